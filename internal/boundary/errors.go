package boundary

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var errCollapsed = errors.New("every line collapsed below the tolerance")

func errNotLinear(g orb.Geometry) error {
	return fmt.Errorf("expected a line, got %s", g.GeoJSONType())
}
