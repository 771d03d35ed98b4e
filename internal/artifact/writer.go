// Package artifact persists the intermediate geometries of a run for
// inspection. Artifacts are written for debugging only; nothing reads them back.
package artifact

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/twpayne/go-geos"

	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/monitoring"
)

// Writer stores artifacts under Dir. A nil *Writer discards everything.
type Writer struct {
	Dir string
}

// NewWriter creates dir if needed. Existing files are overwritten per
// artifact, the directory itself is never cleaned.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: creating %s: %w", dir, err)
	}
	return &Writer{Dir: dir}, nil
}

// Path returns the file path of the artifact called name.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Geometry writes g as <name>.geojson.
func (w *Writer) Geometry(name string, g geo.Geometry) error {
	if w == nil {
		return nil
	}
	fc := geojson.NewFeatureCollection()
	if !g.Empty() {
		if err := addFeatures(fc, g.Geom); err != nil {
			return fmt.Errorf("artifact: %s: %w", name, err)
		}
	}
	return w.write(name, g.CRS, fc)
}

// Collection writes every member of c as one feature of <name>.geojson.
func (w *Writer) Collection(name string, c geo.Collection) error {
	if w == nil {
		return nil
	}
	fc := geojson.NewFeatureCollection()
	for i := 0; i < c.Len(); i++ {
		if err := addFeatures(fc, c.Geoms[i]); err != nil {
			return fmt.Errorf("artifact: %s: %w", name, err)
		}
	}
	return w.write(name, c.CRS, fc)
}

func (w *Writer) write(name string, crs *geo.CRS, fc *geojson.FeatureCollection) error {
	if crs != nil {
		fc.ExtraMembers = geojson.Properties{"crs": crs.Def}
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("artifact: encoding %s: %w", name, err)
	}
	path := w.Path(name + ".geojson")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	monitoring.Logf("artifact: wrote %s (%d features)", path, len(fc.Features))
	return nil
}

// addFeatures appends one feature per polygon or line of g.
func addFeatures(fc *geojson.FeatureCollection, g *geos.Geom) error {
	o, err := geo.ToOrb(g)
	if err != nil {
		return err
	}
	switch v := o.(type) {
	case orb.MultiPolygon:
		for _, p := range v {
			fc.Append(feature(p))
		}
	case orb.MultiLineString:
		for _, ls := range v {
			fc.Append(feature(ls))
		}
	case orb.Collection:
		for _, g := range v {
			fc.Append(feature(g))
		}
	default:
		fc.Append(feature(o))
	}
	return nil
}

func feature(g orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(g)
	switch g.Dimensions() {
	case 2:
		f.Properties["area"] = math.Abs(planar.Area(g))
	case 1:
		f.Properties["length"] = planar.Length(g)
	}
	return f
}
