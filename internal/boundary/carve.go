// Package boundary derives the clip boundary from the dominant blank region:
// carving the content area, regularising its outline and correcting the
// final margin.
package boundary

import (
	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/monitoring"
)

// Carved holds the intermediate and final results of Carve.
type Carved struct {
	Erased  geo.Geometry
	Parts   geo.Collection
	Content geo.Geometry
}

// Carve subtracts the blank region from the extent, splits the remainder into
// single parts and keeps the largest one as the raw content boundary.
func Carve(extent, blank geo.Geometry, sel *geo.Selector) (*Carved, error) {
	erased, err := geo.Difference(extent, blank)
	if err != nil {
		return nil, err
	}
	parts, err := geo.Explode(erased)
	if err != nil {
		return nil, err
	}
	content, _, err := sel.Select(parts)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("carve: %d parts, content area %.3f of %.3f", parts.Len(), content.Area(), extent.Area())
	return &Carved{Erased: erased, Parts: parts, Content: content}, nil
}
