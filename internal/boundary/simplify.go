package boundary

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/monitoring"
)

// SimplifyLine removes vertices that lie within tolerance of the line through
// their neighbours (Douglas-Peucker point removal). Rings that collapse are
// dropped. If any remaining line crosses itself or another line (a hole
// crossing its shell), the whole input is instead simplified with GEOS's
// topology-preserving algorithm.
func SimplifyLine(line geo.Geometry, tolerance float64) (geo.Geometry, error) {
	o, err := geo.ToOrb(line.Geom)
	if err != nil {
		return geo.Geometry{}, err
	}
	var in orb.MultiLineString
	switch v := o.(type) {
	case orb.LineString:
		in = orb.MultiLineString{v}
	case orb.MultiLineString:
		in = v
	default:
		return geo.Geometry{}, &geo.OpError{Op: "simplify", Err: errNotLinear(o)}
	}

	dp := simplify.DouglasPeucker(tolerance)
	var kept orb.MultiLineString
	for _, ls := range in {
		closed := len(ls) > 1 && ls[0].Equal(ls[len(ls)-1])
		s, _ := dp.Simplify(ls.Clone()).(orb.LineString)
		if collapsed(s, closed) {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return geo.Geometry{}, &geo.OpError{Op: "simplify", Err: errCollapsed}
	}

	out, err := geo.FromOrb(line.CRS, kept)
	if err == nil && out.Geom.IsSimple() {
		monitoring.Logf("simplify: %d -> %d vertices", vertexCount(in), vertexCount(kept))
		return out, nil
	}

	monitoring.Logf("simplify: point removal produced self-intersections, resolving")
	return geo.TopologyPreserveSimplify(line, tolerance)
}

func collapsed(ls orb.LineString, closed bool) bool {
	if closed {
		return len(ls) < 4
	}
	return len(ls) < 2
}

func vertexCount(m orb.MultiLineString) int {
	var n int
	for _, ls := range m {
		n += len(ls)
	}
	return n
}
