package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/twpayne/go-geos"
)

// ToOrb converts a GEOS geometry to its orb equivalent via WKB.
func ToOrb(g *geos.Geom) (orb.Geometry, error) {
	o, err := wkb.Unmarshal(g.ToWKB())
	if err != nil {
		return nil, &OpError{Op: "to orb", Err: err}
	}
	return o, nil
}

// FromOrb converts an orb geometry to GEOS via WKB.
func FromOrb(crs *CRS, o orb.Geometry) (Geometry, error) {
	data, err := wkb.Marshal(o)
	if err != nil {
		return Geometry{}, &OpError{Op: "from orb", Err: err}
	}
	g, err := gctx.NewGeomFromWKB(data)
	if err != nil {
		return Geometry{}, &OpError{Op: "from orb", Err: err}
	}
	return Geometry{Geom: g, CRS: crs}, nil
}
