package geo

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom/proj"
)

// WebMercator is the proj4 definition of EPSG:3857, the default CRS in which
// polygon areas are compared when the source CRS is geographic.
const WebMercator = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

// CRS is a parsed spatial reference definition (proj4 string or WKT).
type CRS struct {
	Def string
	sr  *proj.SR
}

// ParseCRS parses def. An empty definition yields ErrMissingCRS.
func ParseCRS(def string) (*CRS, error) {
	def = strings.TrimSpace(def)
	if def == "" {
		return nil, ErrMissingCRS
	}
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("geo: parsing crs: %w", err)
	}
	return &CRS{Def: def, sr: sr}, nil
}

// Geographic reports whether coordinates in c are angular (degrees).
func (c *CRS) Geographic() bool {
	return c != nil && c.sr != nil && c.sr.Name == "longlat"
}

// Transformer returns a coordinate transform from c to dst.
func (c *CRS) Transformer(dst *CRS) (proj.Transformer, error) {
	if c == nil || dst == nil {
		return nil, ErrMissingCRS
	}
	t, err := c.sr.NewTransform(dst.sr)
	if err != nil {
		return nil, fmt.Errorf("geo: creating transform: %w", err)
	}
	return t, nil
}

func (c *CRS) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.Def
}
