package boundary

import (
	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/monitoring"
)

// Regularizer cleans the raw content boundary: the outline is simplified,
// buffered outward, and a polygon is rebuilt from the buffer's own outline.
// Polygonising discards self-crossings left by simplification and dominant
// selection discards any slivers.
type Regularizer struct {
	Tolerance float64
	Distance  float64
	Style     geo.BufferStyle
	Selector  *geo.Selector
}

// Regularized holds every intermediate of Regularize, in pipeline order.
type Regularized struct {
	Line       geo.Geometry
	Simplified geo.Geometry
	Buffer     geo.Geometry
	BufferLine geo.Geometry
	Faces      geo.Collection
	Polygon    geo.Geometry
}

// Regularize runs the simplify, buffer and re-polygonize round trip on content.
func (r *Regularizer) Regularize(content geo.Geometry) (*Regularized, error) {
	out := &Regularized{}
	var err error

	if out.Line, err = geo.Lines(content); err != nil {
		return nil, err
	}
	if out.Simplified, err = SimplifyLine(out.Line, r.Tolerance); err != nil {
		return nil, err
	}
	if out.Buffer, err = geo.Buffer(out.Simplified, r.Distance, r.Style); err != nil {
		return nil, err
	}
	if out.BufferLine, err = geo.Lines(out.Buffer); err != nil {
		return nil, err
	}
	faces, err := geo.Polygonize(out.BufferLine)
	if err != nil {
		return nil, err
	}
	// Each face stands for the whole region its outer ring encloses, so the
	// envelope of the buffer always outranks the band and the slivers inside it.
	if out.Faces, err = geo.Enclosed(faces); err != nil {
		return nil, err
	}
	if out.Polygon, _, err = r.Selector.Select(out.Faces); err != nil {
		return nil, err
	}
	monitoring.Logf("regularize: %d faces, regularized area %.3f", out.Faces.Len(), out.Polygon.Area())
	return out, nil
}
