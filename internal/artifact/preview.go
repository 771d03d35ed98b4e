package artifact

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/monitoring"
	"map-content-extractor/internal/raster"
)

// PreviewSize bounds the longer side of the preview image, in pixels.
const PreviewSize = 1024

// Layer is one outline drawn on the preview.
type Layer struct {
	Geometry  geo.Geometry
	Color     color.RGBA
	Thickness int
}

// Standard preview colours (BGR order, as gocv draws).
var (
	ExtentColor  = color.RGBA{255, 0, 0, 255}
	ContentColor = color.RGBA{0, 255, 255, 255}
	FinalColor   = color.RGBA{0, 255, 0, 255}
)

// Preview writes analysis.jpg: a contrast-stretched, downscaled copy of r
// with each layer's rings drawn on top.
func (w *Writer) Preview(r *raster.Raster, layers ...Layer) error {
	if w == nil {
		return nil
	}
	src, err := r.Mat()
	defer src.Close()
	if err != nil {
		return err
	}

	minVal, maxVal, _, _ := gocv.MinMaxLoc(src)
	alpha := 1.0
	if maxVal > minVal {
		alpha = 255 / float64(maxVal-minVal)
	}
	grey := gocv.NewMat()
	defer grey.Close()
	src.ConvertToWithParams(&grey, gocv.MatTypeCV8U, float32(alpha), float32(-float64(minVal)*alpha))

	scale := 1.0
	if long := max(r.Width, r.Height); long > PreviewSize {
		scale = float64(PreviewSize) / float64(long)
	}
	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(grey, &small, image.Point{}, scale, scale, gocv.InterpolationArea)

	img := gocv.NewMat()
	defer img.Close()
	gocv.CvtColor(small, &img, gocv.ColorGrayToBGR)

	inv, err := r.Transform.Invert()
	if err != nil {
		return err
	}
	for _, l := range layers {
		if l.Geometry.Empty() {
			continue
		}
		drawRings(&img, l, inv, scale)
	}

	path := w.Path("analysis.jpg")
	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("artifact: writing %s", path)
	}
	monitoring.Logf("artifact: wrote %s (%dx%d)", path, img.Cols(), img.Rows())
	return nil
}

func drawRings(img *gocv.Mat, l Layer, inv raster.Affine, scale float64) {
	var pts [][]image.Point
	for _, ring := range geo.Rings(l.Geometry) {
		line := make([]image.Point, len(ring))
		for i, c := range ring {
			col, row := inv.Apply(c[0], c[1])
			line[i] = image.Point{X: int(col * scale), Y: int(row * scale)}
		}
		pts = append(pts, line)
	}
	if len(pts) == 0 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints(pts)
	defer pv.Close()
	thickness := l.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	gocv.Polylines(img, pv, true, l.Color, thickness)
}
