/*
Example code showing how to run the license plate detection pipeline over an
image file and render the results, optionally with the highlight mode debug
overlay showing every candidate
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/detector"
	"github.com/plateguard/go-platedetect/primitive/opencv"
	"github.com/plateguard/go-platedetect/render"
	"gocv.io/x/gocv"
)

// collector records validated candidates for the highlight overlay while
// forwarding events to a structured logger
type collector struct {
	*platedetect.SlogObserver
	mu         sync.Mutex
	candidates []platedetect.ValidatedCandidate
}

func (c *collector) CandidateScored(runID string, v platedetect.ValidatedCandidate) {
	c.mu.Lock()
	c.candidates = append(c.candidates, v)
	c.mu.Unlock()

	c.SlogObserver.CandidateScored(runID, v)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	imgFile := flag.String("i", "car.jpg", "Image file to run plate detection on")
	saveFile := flag.String("o", "car-out.jpg", "The output JPG file with detection markers")
	maxDet := flag.Int("n", 2, "Maximum number of detections to return")
	highlight := flag.Bool("d", false, "Highlight mode, draw every candidate with its accept/reject state")
	fontFile := flag.String("f", "", "Optional TTF font file used for detection labels")
	timeout := flag.Duration("t", 5*time.Second, "Deadline for the pipeline run")

	flag.Parse()

	cfg := platedetect.DefaultConfig()
	cfg.MaxDetections = *maxDet

	det, err := detector.NewDetector(cfg, opencv.NewEngine())

	if err != nil {
		log.Fatal("Error initializing detector: ", err)
	}

	obs := &collector{
		SlogObserver: platedetect.NewSlogObserver(
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))),
	}
	det.SetObserver(obs)

	// load image
	mat := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if mat.Empty() {
		log.Fatalf("Error reading image from: %s", *imgFile)
	}

	defer mat.Close()

	img, err := platedetect.NewImage(mat.ToBytes(), mat.Cols(), mat.Rows(), mat.Channels())

	if err != nil {
		log.Fatal("Error converting image: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()

	detections, err := det.Detect(ctx, img)

	if err != nil {
		log.Fatal("Error occurred on Detect: ", err)
	}

	log.Printf("Detection took %s, found %d plate(s)\n", time.Since(start), len(detections))

	for _, d := range detections {
		fmt.Printf("plate @ (%.0f %.0f %.0fx%.0f) %f %v\n",
			d.Rect.X, d.Rect.Y, d.Rect.Width, d.Rect.Height,
			d.Confidence, d.StrategyTags())
	}

	// render results on a copy of the source image
	resImg := mat.Clone()
	defer resImg.Close()

	font := render.DefaultFont()

	if *highlight {
		render.CandidateBoxes(&resImg, obs.candidates, font, 1)
	}

	render.DetectionBoxes(&resImg, detections, font, 2)

	// overdraw the labels with a TTF face when a font file was supplied
	if *fontFile != "" {
		ttf, err := render.LoadTTFFont(*fontFile, 20)

		if err != nil {
			log.Fatal("Error loading font: ", err)
		}

		for _, d := range detections {
			text := fmt.Sprintf("plate %.2f", d.Confidence)

			err = ttf.PutText(&resImg, text, int(d.Rect.X), int(d.Rect.Y)-6,
				render.White)

			if err != nil {
				log.Fatal("Error rendering label: ", err)
			}
		}
	}

	if ok := gocv.IMWrite(*saveFile, resImg); !ok {
		log.Fatal("Failed to save the image")
	}

	log.Printf("Saved detection result to %s\n", *saveFile)
}
