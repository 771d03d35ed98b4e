// Package pipeline runs the extraction stages in order for one raster: mask,
// blank selection, carving, regularisation, margin correction and clipping.
package pipeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"map-content-extractor/internal/artifact"
	"map-content-extractor/internal/boundary"
	"map-content-extractor/internal/config"
	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/mask"
	"map-content-extractor/internal/monitoring"
	"map-content-extractor/internal/raster"
)

// Pipeline holds the validated settings and collaborators of one run.
type Pipeline struct {
	cfg      *config.Config
	clipper  raster.Clipper
	selector *geo.Selector
}

// New validates cfg and prepares a pipeline. A nil clipper selects a
// raster.MaskClipper using cfg.ClipNoData.
func New(cfg *config.Config, clipper raster.Clipper) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	comparison, err := geo.ParseCRS(cfg.ComparisonCRS)
	if err != nil {
		return nil, fmt.Errorf("comparison crs: %w", err)
	}
	if clipper == nil {
		clipper = &raster.MaskClipper{NoData: cfg.ClipNoData}
	}
	return &Pipeline{cfg: cfg, clipper: clipper, selector: geo.NewSelector(comparison)}, nil
}

// Boundary is every geometry derived from one raster, in the raster CRS.
type Boundary struct {
	CellSize    int
	Extent      geo.Geometry
	Blank       geo.Geometry
	Content     geo.Geometry
	Regularized geo.Geometry
	Final       geo.Geometry
}

// Result describes a completed run.
type Result struct {
	Boundary *Boundary
	Clipped  *raster.Raster
	// Output is empty on a dry run.
	Output string
	// Retained is the share of the raster extent inside the final boundary.
	Retained float64
}

// Run opens the input raster, derives the clip boundary, clips the raster
// and writes it next to the configured output directory.
func (p *Pipeline) Run() (*Result, error) {
	r, err := raster.Open(p.cfg.Input)
	if err != nil {
		return nil, fail(StageOpen, err)
	}

	var w *artifact.Writer
	if p.cfg.WriteArtifacts {
		if w, err = artifact.NewWriter(p.cfg.WorkDir); err != nil {
			return nil, fail(StageArtifact, err)
		}
	}

	b, err := p.Derive(r, w)
	if err != nil {
		return nil, err
	}

	clipped, err := p.clipper.ClipToPolygon(r, b.Final)
	if err != nil {
		return nil, fail(StageClip, err)
	}
	p.clipper.CopyColormap(r, clipped)

	res := &Result{
		Boundary: b,
		Clipped:  clipped,
		Retained: math.Min(1, b.Final.Area()/b.Extent.Area()),
	}
	if p.cfg.DryRun {
		monitoring.Logf("pipeline: dry run, %s not written", OutputPath(p.cfg.OutputDir, p.cfg.Input))
		return res, nil
	}

	res.Output = OutputPath(p.cfg.OutputDir, p.cfg.Input)
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fail(StageWrite, err)
	}
	if err := raster.Write(res.Output, clipped); err != nil {
		return nil, fail(StageWrite, err)
	}
	return res, nil
}

// Derive runs the geometric stages on r. Intermediate geometries are written
// to w, which may be nil.
func (p *Pipeline) Derive(r *raster.Raster, w *artifact.Writer) (*Boundary, error) {
	b := &Boundary{CellSize: r.CellSize()}
	if err := p.cfg.CheckCellSize(b.CellSize); err != nil {
		return nil, fail(StageMargin, err)
	}
	out := &sink{w: w}

	ext := &mask.Extractor{Blank: p.cfg.BlankValue, Connectivity: p.cfg.Connectivity}
	m, err := ext.Extract(r)
	if err != nil {
		return nil, fail(StageMask, err)
	}
	b.Extent = m.Extent
	out.geometry("extent", m.Extent)
	out.collection("blank_pixels", m.Blank)

	if b.Blank, _, err = p.selector.Select(m.Blank); err != nil {
		return nil, fail(StageSelectBlank, err)
	}
	out.geometry("blank_largest", b.Blank)

	carved, err := boundary.Carve(b.Extent, b.Blank, p.selector)
	if err != nil {
		return nil, fail(StageCarve, err)
	}
	b.Content = carved.Content
	out.geometry("erased", carved.Erased)
	out.geometry("exploded_largest", carved.Content)

	reg := &boundary.Regularizer{
		Tolerance: p.cfg.SimplifyTolerance,
		Distance:  p.cfg.BufferDistance,
		Style:     p.cfg.OutwardStyle(),
		Selector:  p.selector,
	}
	rr, err := reg.Regularize(b.Content)
	if err != nil {
		return nil, fail(StageRegularize, err)
	}
	b.Regularized = rr.Polygon
	out.geometry("content_line", rr.Line)
	out.geometry("content_line_simplified", rr.Simplified)
	out.geometry("buffer", rr.Buffer)
	out.geometry("buffer_line", rr.BufferLine)
	out.collection("buffer_polygons", rr.Faces)
	out.geometry("buffer_largest", rr.Polygon)

	mc := &boundary.MarginCorrector{Margin: p.cfg.BufferDistance, Style: p.cfg.InwardStyle()}
	if b.Final, err = mc.Correct(b.Regularized, b.CellSize); err != nil {
		return nil, fail(StageMargin, err)
	}
	out.geometry("final_boundary", b.Final)

	if out.err == nil && w != nil {
		out.err = w.Preview(r,
			artifact.Layer{Geometry: b.Extent, Color: artifact.ExtentColor, Thickness: 1},
			artifact.Layer{Geometry: b.Content, Color: artifact.ContentColor, Thickness: 1},
			artifact.Layer{Geometry: b.Final, Color: artifact.FinalColor, Thickness: 2},
		)
	}
	if out.err != nil {
		return nil, fail(StageArtifact, out.err)
	}
	return b, nil
}

// OutputPath returns <dir>/<stem>_clipped<ext> for input.
func OutputPath(dir, input string) string {
	return filepath.Join(dir, config.Stem(input)+"_clipped"+filepath.Ext(input))
}

// sink writes artifacts until the first failure and then ignores the rest.
type sink struct {
	w   *artifact.Writer
	err error
}

func (s *sink) geometry(name string, g geo.Geometry) {
	if s.err == nil {
		s.err = s.w.Geometry(name, g)
	}
}

func (s *sink) collection(name string, c geo.Collection) {
	if s.err == nil {
		s.err = s.w.Collection(name, c)
	}
}
