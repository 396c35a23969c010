/*
Example code showing how to evaluate pipeline output against ground truth
annotations exported from a VGG Image Annotator (VIA) project
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/detector"
	"github.com/plateguard/go-platedetect/evaluate"
	"github.com/plateguard/go-platedetect/primitive/opencv"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	imgDir := flag.String("i", "./images", "Directory of images to evaluate")
	viaFile := flag.String("a", "annotations.json", "VIA project JSON with ground truth rectangles")
	matchIoU := flag.Float64("m", 0.5, "Minimum IoU for a detection to match an annotation")

	flag.Parse()

	f, err := os.Open(*viaFile)

	if err != nil {
		log.Fatal("Error opening VIA project: ", err)
	}

	groundTruth, err := evaluate.LoadVIA(f)
	f.Close()

	if err != nil {
		log.Fatal("Error parsing VIA project: ", err)
	}

	det, err := detector.NewDetector(platedetect.DefaultConfig(), opencv.NewEngine())

	if err != nil {
		log.Fatal("Error initializing detector: ", err)
	}

	// stable output order over the annotation set
	filenames := make([]string, 0, len(groundTruth))

	for filename := range groundTruth {
		filenames = append(filenames, filename)
	}

	sort.Strings(filenames)

	var matched, detTotal, annTotal int

	for _, filename := range filenames {
		annotations := groundTruth[filename]

		mat := gocv.IMRead(filepath.Join(*imgDir, filename), gocv.IMReadColor)

		if mat.Empty() {
			log.Printf("skipping %s: unreadable image", filename)
			continue
		}

		img, err := platedetect.NewImage(mat.ToBytes(), mat.Cols(), mat.Rows(), mat.Channels())
		mat.Close()

		if err != nil {
			log.Printf("skipping %s: %v", filename, err)
			continue
		}

		detections, err := det.Detect(context.Background(), img)

		if err != nil {
			log.Printf("skipping %s: %v", filename, err)
			continue
		}

		report := evaluate.Evaluate(detections, annotations, float32(*matchIoU))

		for _, m := range report.Matches {
			state := "no-match"
			if m.Matched {
				state = m.AnnotationID
			}
			fmt.Printf("%s: detection %.2f -> %s (IoU %.3f)\n",
				filename, m.Detection.Confidence, state, m.IoU)
		}

		matched += report.MatchedCount
		detTotal += len(report.Matches)
		annTotal += len(annotations)
	}

	if detTotal > 0 && annTotal > 0 {
		fmt.Printf("\nprecision %.3f, recall %.3f (%d detections, %d annotations)\n",
			float64(matched)/float64(detTotal),
			float64(matched)/float64(annTotal),
			detTotal, annTotal)
	}
}
