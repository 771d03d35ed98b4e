package geo

import (
	"fmt"
	"strings"

	"github.com/twpayne/go-geos"
)

// JoinStyle selects the corner style of a buffer.
type JoinStyle string

const (
	JoinRound JoinStyle = "round"
	JoinMitre JoinStyle = "mitre"
	JoinBevel JoinStyle = "bevel"
)

// ParseJoinStyle accepts round, mitre (or miter) and bevel.
func ParseJoinStyle(s string) (JoinStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round":
		return JoinRound, nil
	case "mitre", "miter":
		return JoinMitre, nil
	case "bevel":
		return JoinBevel, nil
	}
	return "", fmt.Errorf("geo: unknown join style %q", s)
}

func (j JoinStyle) geos() geos.BufJoinStyle {
	switch j {
	case JoinMitre:
		return geos.BufJoinStyleMitre
	case JoinBevel:
		return geos.BufJoinStyleBevel
	default:
		return geos.BufJoinStyleRound
	}
}

// BufferStyle parameterises Buffer.
type BufferStyle struct {
	Join       JoinStyle
	QuadSegs   int
	MitreLimit float64
}

// guard runs a GEOS operation, converting panics and empty results into an OpError.
func guard(op string, fn func() *geos.Geom) (g *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = &OpError{Op: op, Err: fmt.Errorf("%v", r)}
		}
	}()
	g = fn()
	if g == nil || g.IsEmpty() {
		return nil, &OpError{Op: op, Err: errEmptyResult}
	}
	return g, nil
}

// Difference returns a minus b. Both must share a CRS.
func Difference(a, b Geometry) (Geometry, error) {
	if err := sameCRS(a.CRS, b.CRS); err != nil {
		return Geometry{}, err
	}
	g, err := guard("difference", func() *geos.Geom { return a.Geom.Difference(b.Geom) })
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Geom: g, CRS: a.CRS}, nil
}

// Explode splits a (multi)polygonal geometry into one polygon per part.
func Explode(g Geometry) (Collection, error) {
	if g.CRS == nil {
		return Collection{}, ErrMissingCRS
	}
	c := Collection{CRS: g.CRS}
	forEachPolygon(g.Geom, func(p *geos.Geom) {
		c.Geoms = append(c.Geoms, p.Clone())
	})
	return c, nil
}

// Lines converts every ring of a (multi)polygon into a MultiLineString.
func Lines(g Geometry) (Geometry, error) {
	if g.CRS == nil {
		return Geometry{}, ErrMissingCRS
	}
	rings := Rings(g)
	if len(rings) == 0 {
		return Geometry{}, &OpError{Op: "polygon to line", Err: errEmptyResult}
	}
	ml, err := guard("polygon to line", func() *geos.Geom {
		lines := make([]*geos.Geom, len(rings))
		for i, ring := range rings {
			lines[i] = gctx.NewLineString(ring)
		}
		return gctx.NewCollection(geos.TypeIDMultiLineString, lines)
	})
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Geom: ml, CRS: g.CRS}, nil
}

// Buffer offsets g by distance; negative distances shrink polygons.
func Buffer(g Geometry, distance float64, style BufferStyle) (Geometry, error) {
	if g.CRS == nil {
		return Geometry{}, ErrMissingCRS
	}
	quad := style.QuadSegs
	if quad <= 0 {
		quad = 8
	}
	limit := style.MitreLimit
	if limit <= 0 {
		limit = 5
	}
	op := fmt.Sprintf("buffer %g (%s)", distance, style.Join)
	b, err := guard(op, func() *geos.Geom {
		return g.Geom.BufferWithStyle(distance, quad, geos.BufCapStyleRound, style.Join.geos(), limit)
	})
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Geom: b, CRS: g.CRS}, nil
}

// Polygonize returns the faces enclosed by the line network in lines.
func Polygonize(lines Geometry) (Collection, error) {
	if lines.CRS == nil {
		return Collection{}, ErrMissingCRS
	}
	faces, err := guard("polygonize", func() *geos.Geom {
		return gctx.Polygonize([]*geos.Geom{lines.Geom})
	})
	if err != nil {
		return Collection{}, err
	}
	return Explode(Geometry{Geom: faces, CRS: lines.CRS})
}

// Enclosed replaces every member of c by the full region inside its
// exterior ring, discarding holes.
func Enclosed(c Collection) (Collection, error) {
	out := Collection{CRS: c.CRS, Geoms: make([]*geos.Geom, 0, len(c.Geoms))}
	for _, g := range c.Geoms {
		shell := g.ExteriorRing().CoordSeq().ToCoords()
		p, err := guard("fill holes", func() *geos.Geom {
			return gctx.NewPolygon([][][]float64{shell})
		})
		if err != nil {
			return Collection{}, err
		}
		out.Geoms = append(out.Geoms, p)
	}
	return out, nil
}

// Repair returns g unchanged when valid, otherwise GEOS's make-valid result.
func Repair(g Geometry) (Geometry, error) {
	if g.Geom.IsValid() {
		return g, nil
	}
	fixed, err := guard("make valid", func() *geos.Geom { return g.Geom.MakeValid() })
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Geom: fixed, CRS: g.CRS}, nil
}

// Union merges the members of c into one geometry.
func Union(c Collection) (Geometry, error) {
	if len(c.Geoms) == 0 {
		return Geometry{}, ErrEmptyCollection
	}
	parts := make([]*geos.Geom, len(c.Geoms))
	for i, g := range c.Geoms {
		parts[i] = g.Clone()
	}
	u, err := guard("union", func() *geos.Geom {
		return gctx.NewCollection(geos.TypeIDGeometryCollection, parts).UnaryUnion()
	})
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Geom: u, CRS: c.CRS}, nil
}

// TopologyPreserveSimplify is GEOS's simplification that never introduces
// self-intersections or changes ring nesting.
func TopologyPreserveSimplify(g Geometry, tolerance float64) (Geometry, error) {
	s, err := guard("topology preserving simplify", func() *geos.Geom {
		return g.Geom.TopologyPreserveSimplify(tolerance)
	})
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Geom: s, CRS: g.CRS}, nil
}
