package boundary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"map-content-extractor/internal/geo"
)

const utm10 = "+proj=utm +zone=10 +datum=WGS84 +units=m +no_defs"

func testCRS(t *testing.T) *geo.CRS {
	t.Helper()
	c, err := geo.ParseCRS(utm10)
	require.NoError(t, err)
	return c
}

func rect(t *testing.T, crs *geo.CRS, minX, minY, maxX, maxY float64) geo.Geometry {
	t.Helper()
	g, err := geo.Rect(crs, minX, minY, maxX, maxY)
	require.NoError(t, err)
	return g
}

func bounds(g geo.Geometry) [4]float64 {
	minX, minY, maxX, maxY := g.Bounds()
	return [4]float64{minX, minY, maxX, maxY}
}

func assertBounds(t *testing.T, want [4]float64, g geo.Geometry, delta float64) {
	t.Helper()
	got := bounds(g)
	for i := range want {
		require.InDelta(t, want[i], got[i], delta, "bounds[%d] = %v", i, got)
	}
}
