package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"map-content-extractor/internal/geo"
)

// Clipper masks a raster against a boundary polygon and carries the source
// colormap over to the result.
type Clipper interface {
	ClipToPolygon(r *Raster, boundary geo.Geometry) (*Raster, error)
	CopyColormap(src, dst *Raster)
}

// fillShift is the number of fractional bits used when rasterising the
// boundary, so vertices keep 1/256 pixel precision.
const fillShift = 8

// MaskClipper clips to the boundary's pixel window and sets every pixel whose
// centre falls outside the boundary to nodata.
type MaskClipper struct {
	// NoData is used when the source band has no nodata value of its own.
	NoData float64
}

// ClipToPolygon returns a new raster covering the boundary's bounding box,
// snapped outward to whole pixels and limited to r.
func (c *MaskClipper) ClipToPolygon(r *Raster, boundary geo.Geometry) (*Raster, error) {
	if r.CRS == nil || boundary.CRS == nil {
		return nil, geo.ErrMissingCRS
	}
	inv, err := r.Transform.Invert()
	if err != nil {
		return nil, err
	}

	win, err := pixelWindow(r, inv, boundary)
	if err != nil {
		return nil, err
	}

	mask := gocv.Zeros(win.Dy(), win.Dx(), gocv.MatTypeCV8U)
	defer mask.Close()

	var rings [][]image.Point
	for _, ring := range geo.Rings(boundary) {
		pts := make([]image.Point, len(ring))
		for i, xy := range ring {
			col, row := inv.Apply(xy[0], xy[1])
			// OpenCV puts pixel centres on integer coordinates.
			pts[i] = image.Point{
				X: int(math.Round((col - float64(win.Min.X) - 0.5) * (1 << fillShift))),
				Y: int(math.Round((row - float64(win.Min.Y) - 0.5) * (1 << fillShift))),
			}
		}
		rings = append(rings, pts)
	}
	pv := gocv.NewPointsVectorFromPoints(rings)
	defer pv.Close()
	gocv.FillPolyWithParams(&mask, pv, color.RGBA{R: 255, G: 255, B: 255, A: 255}, gocv.Line8, fillShift, image.Point{})

	nodata := c.NoData
	if r.HasNoData {
		nodata = r.NoData
	}
	originX, originY := r.Transform.Apply(float64(win.Min.X), float64(win.Min.Y))
	out := &Raster{
		Width:     win.Dx(),
		Height:    win.Dy(),
		Data:      make([]float32, win.Dx()*win.Dy()),
		Transform: Affine{originX, r.Transform[1], r.Transform[2], originY, r.Transform[4], r.Transform[5]},
		CRS:       r.CRS,
		NoData:    nodata,
		HasNoData: true,
		dataType:  r.dataType,
	}
	inside := mask.ToBytes()
	for row := 0; row < out.Height; row++ {
		for col := 0; col < out.Width; col++ {
			i := row*out.Width + col
			if inside[i] == 0 {
				out.Data[i] = float32(nodata)
				continue
			}
			out.Data[i] = r.At(win.Min.X+col, win.Min.Y+row)
		}
	}
	return out, nil
}

// CopyColormap copies src's palette onto dst verbatim.
func (c *MaskClipper) CopyColormap(src, dst *Raster) {
	if len(src.Colormap) == 0 {
		return
	}
	dst.Colormap = append([]color.RGBA(nil), src.Colormap...)
}

// pixelWindow converts the boundary bounds to a pixel rectangle clamped to r.
func pixelWindow(r *Raster, inv Affine, boundary geo.Geometry) (image.Rectangle, error) {
	minX, minY, maxX, maxY := boundary.Bounds()
	minCol, minRow := math.Inf(1), math.Inf(1)
	maxCol, maxRow := math.Inf(-1), math.Inf(-1)
	for _, xy := range [][2]float64{{minX, minY}, {maxX, minY}, {minX, maxY}, {maxX, maxY}} {
		col, row := inv.Apply(xy[0], xy[1])
		col, row = snap(col), snap(row)
		minCol, maxCol = math.Min(minCol, col), math.Max(maxCol, col)
		minRow, maxRow = math.Min(minRow, row), math.Max(maxRow, row)
	}
	win := image.Rect(
		int(math.Floor(minCol)), int(math.Floor(minRow)),
		int(math.Ceil(maxCol)), int(math.Ceil(maxRow)),
	).Intersect(image.Rect(0, 0, r.Width, r.Height))
	if win.Empty() {
		return image.Rectangle{}, fmt.Errorf("raster: boundary %v does not overlap the raster", [4]float64{minX, minY, maxX, maxY})
	}
	return win, nil
}

// snap absorbs floating-point noise around whole pixel coordinates.
func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < 1e-6 {
		return r
	}
	return v
}
