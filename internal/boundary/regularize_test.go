package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-content-extractor/internal/geo"
)

func TestRegularize_Square(t *testing.T) {
	crs := testCRS(t)
	content := rect(t, crs, 0, 0, 1000, 1000)

	r := &Regularizer{
		Tolerance: 10,
		Distance:  100,
		Style:     geo.BufferStyle{Join: geo.JoinRound},
		Selector:  geo.NewSelector(nil),
	}
	out, err := r.Regularize(content)
	require.NoError(t, err)

	// band plus the region it surrounds
	assert.Equal(t, 2, out.Faces.Len())
	assertBounds(t, [4]float64{-100, -100, 1100, 1100}, out.Polygon, 1e-6)
	assert.Equal(t, 0, out.Polygon.Geom.NumInteriorRings())
	assert.Greater(t, out.Polygon.Area(), out.Buffer.Area())
}

func TestRegularize_JaggedOutline(t *testing.T) {
	crs := testCRS(t)
	// crenellated top edge with 2-unit steps, well under the tolerance
	shell := [][]float64{{0, 0}, {1000, 0}, {1000, 1000}}
	for x := 1000.0; x > 0; x -= 200 {
		shell = append(shell, []float64{x, 1002}, []float64{x - 100, 1002}, []float64{x - 100, 1000}, []float64{x - 200, 1000})
	}
	content, err := geo.NewPolygon(crs, shell)
	require.NoError(t, err)

	r := &Regularizer{
		Tolerance: 10,
		Distance:  100,
		Style:     geo.BufferStyle{Join: geo.JoinMitre},
		Selector:  geo.NewSelector(nil),
	}
	out, err := r.Regularize(content)
	require.NoError(t, err)
	assert.Less(t, out.Simplified.Geom.NumCoordinates(), out.Line.Geom.NumCoordinates())
	assertBounds(t, [4]float64{-100, -100, 1100, 1100}, out.Polygon, 2.5)
}

func TestRegularize_CollapsedContent(t *testing.T) {
	crs := testCRS(t)
	r := &Regularizer{Tolerance: 10, Distance: 100, Selector: geo.NewSelector(nil)}

	_, err := r.Regularize(rect(t, crs, 0, 0, 3, 3))
	var opErr *geo.OpError
	assert.ErrorAs(t, err, &opErr)
}
