// Package raster holds the single-band raster model, its GDAL file I/O and
// the clip-to-polygon collaborator.
package raster

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/airbusgeo/godal"

	"map-content-extractor/internal/geo"
)

// ErrInputNotFound is returned when the source raster is missing or unreadable.
var ErrInputNotFound = errors.New("raster: input not found")

// ErrUnsupportedDataType is returned for bands whose values do not all fit
// exactly in a float32 sample (32-bit integers, float64, complex).
var ErrUnsupportedDataType = errors.New("raster: unsupported band data type")

// Affine is a GDAL-ordered geotransform:
// x = a[0] + col*a[1] + row*a[2], y = a[3] + col*a[4] + row*a[5].
type Affine [6]float64

// Apply maps pixel-corner coordinates to world coordinates.
func (a Affine) Apply(col, row float64) (x, y float64) {
	return a[0] + col*a[1] + row*a[2], a[3] + col*a[4] + row*a[5]
}

// Invert returns the world-to-pixel transform.
func (a Affine) Invert() (Affine, error) {
	det := a[1]*a[5] - a[2]*a[4]
	if det == 0 {
		return Affine{}, fmt.Errorf("raster: singular geotransform %v", [6]float64(a))
	}
	return Affine{
		(a[2]*a[3] - a[0]*a[5]) / det,
		a[5] / det,
		-a[2] / det,
		(a[0]*a[4] - a[1]*a[3]) / det,
		-a[4] / det,
		a[1] / det,
	}, nil
}

// PixelSize returns the absolute pixel width and height in CRS units.
func (a Affine) PixelSize() (w, h float64) {
	return math.Hypot(a[1], a[4]), math.Hypot(a[2], a[5])
}

// CellSize truncates the mean pixel dimension to whole CRS units. Square
// pixels use the width directly.
func CellSize(a Affine) int {
	w, h := a.PixelSize()
	if w == h {
		return int(w)
	}
	return int((w + h) / 2)
}

// Raster is a single band of samples held in memory, row-major.
type Raster struct {
	Width, Height int
	Data          []float32
	Transform     Affine
	CRS           *geo.CRS
	NoData        float64
	HasNoData     bool
	Colormap      []color.RGBA

	dataType godal.DataType
}

// New allocates a zeroed raster.
func New(width, height int, transform Affine, crs *geo.CRS) *Raster {
	return &Raster{
		Width:     width,
		Height:    height,
		Data:      make([]float32, width*height),
		Transform: transform,
		CRS:       crs,
		dataType:  godal.Byte,
	}
}

// At returns the sample at col, row.
func (r *Raster) At(col, row int) float32 {
	return r.Data[row*r.Width+col]
}

// Set writes the sample at col, row.
func (r *Raster) Set(col, row int, v float32) {
	r.Data[row*r.Width+col] = v
}

// Bounds returns the world bounding box spanned by the four raster corners.
func (r *Raster) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, c := range [][2]float64{{0, 0}, {float64(r.Width), 0}, {0, float64(r.Height)}, {float64(r.Width), float64(r.Height)}} {
		x, y := r.Transform.Apply(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return minX, minY, maxX, maxY
}

// Extent returns the raster's rectangular footprint as a polygon.
func (r *Raster) Extent() (geo.Geometry, error) {
	if r.CRS == nil {
		return geo.Geometry{}, geo.ErrMissingCRS
	}
	minX, minY, maxX, maxY := r.Bounds()
	return geo.Rect(r.CRS, minX, minY, maxX, maxY)
}

// CellSize is CellSize(r.Transform).
func (r *Raster) CellSize() int {
	return CellSize(r.Transform)
}
