package pure

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

// Edges computes a Canny style edge map: gaussian smoothing, Sobel
// gradients, non-maximum suppression, then hysteresis thresholding
func (e *Engine) Edges(img *platedetect.Image, lowThresh,
	highThresh float32) (*primitive.EdgeMap, error) {

	if err := img.Validate(); err != nil {
		return nil, err
	}

	if lowThresh < 0 || highThresh < lowThresh {
		return nil, fmt.Errorf("invalid edge thresholds low=%f high=%f",
			lowThresh, highThresh)
	}

	// smooth to reduce noise before differentiation
	smoothed := blur.Gaussian(toNRGBA(img), 1.4)
	gray := grayPlane(smoothed, img.Width, img.Height)

	w, h := img.Width, img.Height
	mag := make([]float32, w*h)
	dir := make([]uint8, w*h)

	// Sobel gradients with quantized direction (0=horizontal, 1=diag up,
	// 2=vertical, 3=diag down)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {

			gx := -gray[(y-1)*w+x-1] + gray[(y-1)*w+x+1] +
				-2*gray[y*w+x-1] + 2*gray[y*w+x+1] +
				-gray[(y+1)*w+x-1] + gray[(y+1)*w+x+1]

			gy := -gray[(y-1)*w+x-1] - 2*gray[(y-1)*w+x] - gray[(y-1)*w+x+1] +
				gray[(y+1)*w+x-1] + 2*gray[(y+1)*w+x] + gray[(y+1)*w+x+1]

			i := y*w + x
			mag[i] = float32(math.Sqrt(float64(gx*gx + gy*gy)))

			angle := math.Atan2(float64(gy), float64(gx)) * 180.0 / math.Pi

			if angle < 0 {
				angle += 180
			}

			switch {
			case angle < 22.5 || angle >= 157.5:
				dir[i] = 0
			case angle < 67.5:
				dir[i] = 1
			case angle < 112.5:
				dir[i] = 2
			default:
				dir[i] = 3
			}
		}
	}

	// non-maximum suppression keeps only local maxima along the gradient
	// direction
	thin := make([]float32, w*h)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {

			i := y*w + x
			m := mag[i]

			if m == 0 {
				continue
			}

			var a, b float32

			switch dir[i] {
			case 0:
				a, b = mag[i-1], mag[i+1]
			case 1:
				a, b = mag[(y-1)*w+x+1], mag[(y+1)*w+x-1]
			case 2:
				a, b = mag[(y-1)*w+x], mag[(y+1)*w+x]
			default:
				a, b = mag[(y-1)*w+x-1], mag[(y+1)*w+x+1]
			}

			if m >= a && m >= b {
				thin[i] = m
			}
		}
	}

	// hysteresis: strong edges seed a flood through connected weak edges
	out := &primitive.EdgeMap{
		Data:   make([]uint8, w*h),
		Width:  w,
		Height: h,
	}

	stack := make([]int, 0, 256)

	for i, m := range thin {
		if m >= highThresh && out.Data[i] == 0 {
			out.Data[i] = 255
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {

		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		px, py := p%w, p/w

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {

				nx, ny := px+dx, py+dy

				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}

				n := ny*w + nx

				if out.Data[n] == 0 && thin[n] >= lowThresh {
					out.Data[n] = 255
					stack = append(stack, n)
				}
			}
		}
	}

	return out, nil
}

// mooreOffsets is the clockwise 8-neighbourhood starting from the west
// neighbour, used by the boundary trace
var mooreOffsets = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

// Contours extracts the outer boundary polygon of each connected edge
// region using Moore neighbour tracing.  Regions are visited in scan order
// so the output is deterministic
func (e *Engine) Contours(edges *primitive.EdgeMap) ([]primitive.Polygon, error) {

	w, h := edges.Width, edges.Height

	if len(edges.Data) != w*h {
		return nil, fmt.Errorf("edge map buffer length %d does not match %dx%d",
			len(edges.Data), w, h)
	}

	visited := make([]bool, w*h)
	var polys []primitive.Polygon

	set := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && edges.Data[y*w+x] != 0
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {

			i := y*w + x

			if edges.Data[i] == 0 || visited[i] {
				continue
			}

			contour := traceBoundary(set, x, y, w, h)

			// mark the whole component visited so it is traced once
			floodMark(edges, visited, x, y)

			if len(contour) >= 3 {
				polys = append(polys, contour)
			}
		}
	}

	return polys, nil
}

// traceBoundary walks the outer boundary of the component containing the
// start pixel clockwise, returning the boundary polygon
func traceBoundary(set func(x, y int) bool, startX, startY, w, h int) primitive.Polygon {

	contour := primitive.Polygon{image.Pt(startX, startY)}

	// backtrack starts at the west neighbour, the scan direction guarantees
	// it is empty
	cur := image.Pt(startX, startY)
	dir := 0

	for steps := 0; steps < 4*w*h; steps++ {

		found := false

		for k := 0; k < 8; k++ {

			d := (dir + k) % 8
			n := image.Pt(cur.X+mooreOffsets[d].X, cur.Y+mooreOffsets[d].Y)

			if set(n.X, n.Y) {
				cur = n
				// continue the search from behind the direction we
				// entered this pixel
				dir = (d + 6) % 8
				found = true
				break
			}
		}

		if !found {
			// isolated pixel
			break
		}

		if cur.X == startX && cur.Y == startY {
			break
		}

		contour = append(contour, cur)
	}

	return contour
}

// floodMark marks all pixels of the component containing x, y as visited
func floodMark(edges *primitive.EdgeMap, visited []bool, x, y int) {

	w, h := edges.Width, edges.Height
	stack := []int{y*w + x}
	visited[y*w+x] = true

	for len(stack) > 0 {

		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		px, py := p%w, p/w

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {

				nx, ny := px+dx, py+dy

				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}

				n := ny*w + nx

				if edges.Data[n] != 0 && !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
}

// OrientedTextureResponse convolves the luminance plane with a Gabor band
// pass kernel at the given orientation and spatial frequency
func (e *Engine) OrientedTextureResponse(img *platedetect.Image, angleDeg,
	frequency float32) (*primitive.ResponseMap, error) {

	if err := img.Validate(); err != nil {
		return nil, err
	}

	if frequency <= 0 {
		return nil, fmt.Errorf("texture frequency %f must be positive", frequency)
	}

	gray := grayPlane(toNRGBA(img), img.Width, img.Height)

	lambda := 1.0 / float64(frequency)
	sigma := 0.56 * lambda
	gamma := 0.5
	theta := float64(angleDeg) * math.Pi / 180.0

	radius := int(2 * sigma)

	if radius < 1 {
		radius = 1
	}

	// build the Gabor kernel
	ksize := radius*2 + 1
	kernel := make([]float32, ksize*ksize)

	for ky := -radius; ky <= radius; ky++ {
		for kx := -radius; kx <= radius; kx++ {

			xr := float64(kx)*math.Cos(theta) + float64(ky)*math.Sin(theta)
			yr := -float64(kx)*math.Sin(theta) + float64(ky)*math.Cos(theta)

			g := math.Exp(-(xr*xr+gamma*gamma*yr*yr)/(2*sigma*sigma)) *
				math.Cos(2*math.Pi*xr/lambda)

			kernel[(ky+radius)*ksize+kx+radius] = float32(g)
		}
	}

	w, h := img.Width, img.Height

	out := &primitive.ResponseMap{
		Data:   make([]float32, w*h),
		Width:  w,
		Height: h,
	}

	// direct convolution with edge clamping
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {

			sum := float32(0)

			for ky := -radius; ky <= radius; ky++ {
				for kx := -radius; kx <= radius; kx++ {

					sx := x + kx
					sy := y + ky

					if sx < 0 {
						sx = 0
					} else if sx >= w {
						sx = w - 1
					}

					if sy < 0 {
						sy = 0
					} else if sy >= h {
						sy = h - 1
					}

					sum += gray[sy*w+sx] * kernel[(ky+radius)*ksize+kx+radius]
				}
			}

			out.Data[y*w+x] = sum
		}
	}

	return out, nil
}
