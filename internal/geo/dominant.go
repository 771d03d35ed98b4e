package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"gonum.org/v1/gonum/floats"

	"map-content-extractor/internal/monitoring"
)

// Selector picks the dominant (largest-area) polygon of a collection.
// Areas of geographic collections are measured after reprojecting to
// Comparison; the returned geometry is always the unprojected one.
type Selector struct {
	Comparison *CRS
}

// NewSelector returns a Selector measuring geographic areas in comparison.
func NewSelector(comparison *CRS) *Selector {
	return &Selector{Comparison: comparison}
}

// Select returns the largest member of c and its index.
func (s *Selector) Select(c Collection) (Geometry, int, error) {
	if c.Len() == 0 {
		return Geometry{}, -1, ErrEmptyCollection
	}
	areas, err := s.Areas(c)
	if err != nil {
		return Geometry{}, -1, err
	}
	i := floats.MaxIdx(areas)
	monitoring.Logf("dominant region: %d of %d candidates, area %.3f", i, c.Len(), areas[i])
	return c.At(i), i, nil
}

// Areas returns the planar area of every member, in Comparison units when the
// collection CRS is geographic and in native units otherwise.
func (s *Selector) Areas(c Collection) ([]float64, error) {
	if c.CRS == nil {
		return nil, ErrMissingCRS
	}
	areas := make([]float64, c.Len())
	if !c.CRS.Geographic() {
		for i, g := range c.Geoms {
			areas[i] = g.Area()
		}
		return areas, nil
	}

	if s.Comparison == nil {
		return nil, ErrMissingCRS
	}
	if s.Comparison.Geographic() {
		return nil, fmt.Errorf("geo: comparison crs %q is geographic", s.Comparison.Def)
	}
	trans, err := c.CRS.Transformer(s.Comparison)
	if err != nil {
		return nil, err
	}
	for i, g := range c.Geoms {
		o, err := ToOrb(g)
		if err != nil {
			return nil, err
		}
		var terr error
		projected := project.Geometry(o, func(p orb.Point) orb.Point {
			x, y, err := trans(p[0], p[1])
			if err != nil && terr == nil {
				terr = err
			}
			return orb.Point{x, y}
		})
		if terr != nil {
			return nil, &OpError{Op: "reproject for area", Err: terr}
		}
		areas[i] = math.Abs(planar.Area(projected))
	}
	return areas, nil
}
