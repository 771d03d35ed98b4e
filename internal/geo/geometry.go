// Package geo carries CRS-tagged geometries through the extraction stages and
// wraps the GEOS operations they need.
package geo

import (
	"fmt"

	"github.com/twpayne/go-geos"
)

// gctx owns every GEOS geometry built by this module. Geometries from
// different contexts cannot be combined.
var gctx = geos.NewContext()

// Geometry is a GEOS geometry tagged with the CRS it was produced in.
type Geometry struct {
	Geom *geos.Geom
	CRS  *CRS
}

// Area returns the planar area in CRS units.
func (g Geometry) Area() float64 {
	if g.Geom == nil {
		return 0
	}
	return g.Geom.Area()
}

// Bounds returns minX, minY, maxX, maxY.
func (g Geometry) Bounds() (minX, minY, maxX, maxY float64) {
	b := g.Geom.Bounds()
	return b.MinX, b.MinY, b.MaxX, b.MaxY
}

// Empty reports whether g holds no geometry.
func (g Geometry) Empty() bool {
	return g.Geom == nil || g.Geom.IsEmpty()
}

// Collection is an order-irrelevant set of geometries sharing one CRS.
type Collection struct {
	CRS   *CRS
	Geoms []*geos.Geom
}

// Len returns the number of members.
func (c Collection) Len() int { return len(c.Geoms) }

// At returns member i tagged with the collection CRS.
func (c Collection) At(i int) Geometry {
	return Geometry{Geom: c.Geoms[i], CRS: c.CRS}
}

// NewPolygon builds a polygon from a shell and optional holes. Rings are
// closed if their last coordinate differs from the first.
func NewPolygon(crs *CRS, shell [][]float64, holes ...[][]float64) (Geometry, error) {
	rings := make([][][]float64, 0, 1+len(holes))
	rings = append(rings, closeRing(shell))
	for _, h := range holes {
		rings = append(rings, closeRing(h))
	}
	g, err := guard("polygon", func() *geos.Geom { return gctx.NewPolygon(rings) })
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Geom: g, CRS: crs}, nil
}

// Rect builds an axis-aligned rectangle polygon.
func Rect(crs *CRS, minX, minY, maxX, maxY float64) (Geometry, error) {
	return NewPolygon(crs, [][]float64{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY},
	})
}

// FromWKT parses a WKT geometry.
func FromWKT(crs *CRS, wkt string) (Geometry, error) {
	g, err := gctx.NewGeomFromWKT(wkt)
	if err != nil {
		return Geometry{}, &OpError{Op: "parse wkt", Err: err}
	}
	return Geometry{Geom: g, CRS: crs}, nil
}

// Rings returns the coordinates of every ring of every polygon in g, shells
// before holes. Non-polygonal members are skipped.
func Rings(g Geometry) [][][]float64 {
	var out [][][]float64
	forEachPolygon(g.Geom, func(p *geos.Geom) {
		out = append(out, p.ExteriorRing().CoordSeq().ToCoords())
		for i := 0; i < p.NumInteriorRings(); i++ {
			out = append(out, p.InteriorRing(i).CoordSeq().ToCoords())
		}
	})
	return out
}

func forEachPolygon(g *geos.Geom, fn func(*geos.Geom)) {
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		if !g.IsEmpty() {
			fn(g)
		}
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		for i := 0; i < g.NumGeometries(); i++ {
			forEachPolygon(g.Geometry(i), fn)
		}
	}
}

func closeRing(coords [][]float64) [][]float64 {
	if len(coords) == 0 {
		return coords
	}
	first, last := coords[0], coords[len(coords)-1]
	if first[0] == last[0] && first[1] == last[1] {
		return coords
	}
	out := make([][]float64, len(coords), len(coords)+1)
	copy(out, coords)
	return append(out, []float64{first[0], first[1]})
}

func sameCRS(a, b *CRS) error {
	if a == nil || b == nil {
		return ErrMissingCRS
	}
	if a != b && a.Def != b.Def {
		return fmt.Errorf("geo: crs mismatch: %q vs %q", a.Def, b.Def)
	}
	return nil
}
