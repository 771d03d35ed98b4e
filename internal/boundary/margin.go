package boundary

import (
	"fmt"

	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/monitoring"
)

// MarginCorrector pulls the regularized polygon back in by Margin less one
// raster cell, so the clip boundary ends one cell outside the content.
type MarginCorrector struct {
	Margin float64
	Style  geo.BufferStyle
}

// Correct shrinks p by Margin - cellSize.
func (m *MarginCorrector) Correct(p geo.Geometry, cellSize int) (geo.Geometry, error) {
	d := m.Margin - float64(cellSize)
	if d <= 0 {
		return geo.Geometry{}, fmt.Errorf("boundary: cell size %d is not smaller than margin %g", cellSize, m.Margin)
	}
	final, err := geo.Buffer(p, -d, m.Style)
	if err != nil {
		return geo.Geometry{}, err
	}
	monitoring.Logf("margin: inward %g (%s), final area %.3f", d, m.Style.Join, final.Area())
	return final, nil
}
