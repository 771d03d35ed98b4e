// Package mask vectorises the blank (reserved-value) pixels of a raster.
package mask

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/monitoring"
	"map-content-extractor/internal/raster"
)

// ErrNoBlankRegion is returned when no pixel carries the blank value.
var ErrNoBlankRegion = errors.New("mask: no blank region found")

// Extractor finds connected regions of blank pixels.
type Extractor struct {
	Blank float64
	// Connectivity is 4 or 8.
	Connectivity int
}

// Result holds the raster footprint and one polygon per blank region, both in
// the raster CRS.
type Result struct {
	Extent geo.Geometry
	Blank  geo.Collection
	Pixels int
}

// Extract builds the blank mask of r and vectorises its connected regions.
func (e *Extractor) Extract(r *raster.Raster) (*Result, error) {
	if r.CRS == nil {
		return nil, geo.ErrMissingCRS
	}
	conn := e.Connectivity
	if conn != 8 {
		conn = 4
	}

	src, err := r.Mat()
	defer src.Close()
	if err != nil {
		return nil, err
	}

	blank := gocv.NewMat()
	defer blank.Close()
	v := gocv.NewScalar(e.Blank, 0, 0, 0)
	gocv.InRangeWithScalar(src, v, v, &blank)

	count := gocv.CountNonZero(blank)
	monitoring.Logf("mask: %d of %d pixels equal %g", count, r.Width*r.Height, e.Blank)
	if count == 0 {
		return nil, ErrNoBlankRegion
	}

	labels := gocv.NewMat()
	defer labels.Close()
	n := gocv.ConnectedComponentsWithParams(blank, &labels, conn, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)
	lab, err := labels.DataPtrInt32()
	if err != nil {
		return nil, fmt.Errorf("mask: reading labels: %w", err)
	}

	extent, err := r.Extent()
	if err != nil {
		return nil, err
	}
	res := &Result{Extent: extent, Blank: geo.Collection{CRS: r.CRS}, Pixels: count}
	for l, rings := range traceLabels(lab, r.Width, r.Height, n) {
		if l == 0 || len(rings) == 0 {
			continue
		}
		g, err := component(r, rings)
		if err != nil {
			return nil, fmt.Errorf("mask: component %d: %w", l, err)
		}
		res.Blank.Geoms = append(res.Blank.Geoms, g.Geom)
	}
	monitoring.Logf("mask: %d blank regions (%d-connected)", res.Blank.Len(), conn)
	if res.Blank.Len() == 0 {
		return nil, ErrNoBlankRegion
	}
	return res, nil
}

// component assembles the rings of one region into a polygon in world
// coordinates. A region normally has exactly one shell; diagonal contacts in
// 8-connected mode yield shells touching at a corner. A single valid polygon
// cannot touch itself at a point, so such a region comes back as one
// MultiPolygon.
func component(r *raster.Raster, rings []ring) (geo.Geometry, error) {
	var shells, holes [][][]float64
	for _, rg := range rings {
		world := make([][]float64, len(rg))
		for i, p := range rg {
			x, y := r.Transform.Apply(float64(p.X), float64(p.Y))
			world[i] = []float64{x, y}
		}
		if rg.signedArea() > 0 {
			shells = append(shells, world)
		} else {
			holes = append(holes, world)
		}
	}

	if len(shells) == 1 {
		g, err := geo.NewPolygon(r.CRS, shells[0], holes...)
		if err != nil {
			return geo.Geometry{}, err
		}
		return geo.Repair(g)
	}

	parts := geo.Collection{CRS: r.CRS}
	for _, s := range shells {
		g, err := geo.NewPolygon(r.CRS, s)
		if err != nil {
			return geo.Geometry{}, err
		}
		parts.Geoms = append(parts.Geoms, g.Geom)
	}
	body, err := geo.Union(parts)
	if err != nil {
		return geo.Geometry{}, err
	}
	for _, h := range holes {
		hole, err := geo.NewPolygon(r.CRS, h)
		if err != nil {
			return geo.Geometry{}, err
		}
		if body, err = geo.Difference(body, hole); err != nil {
			return geo.Geometry{}, err
		}
	}
	return geo.Repair(body)
}
