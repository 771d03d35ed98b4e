package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/raster"
)

const utm10 = "+proj=utm +zone=10 +datum=WGS84 +units=m +no_defs"

func writeSheet(t *testing.T, path string, size, border int) {
	t.Helper()
	crs, err := geo.ParseCRS(utm10)
	require.NoError(t, err)
	r := raster.New(size, size, raster.Affine{0, 1, 0, float64(size), 0, -1}, crs)
	for row := border; row < size-border; row++ {
		for col := border; col < size-border; col++ {
			r.Set(col, row, 1)
		}
	}
	require.NoError(t, raster.Write(path, r))
}

func TestIsRasterFile(t *testing.T) {
	for _, p := range []string{"a.tif", "b.TIFF", "c.img", "d.png", "e.JPG"} {
		assert.True(t, isRasterFile(p), p)
	}
	for _, p := range []string{"a.geojson", "b.txt", "c"} {
		assert.False(t, isRasterFile(p), p)
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.tif", "two.img", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.tif"), 0o755))

	files, errs := expandInputs([]string{dir, "missing.tif"})
	assert.Empty(t, errs)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "one.tif"),
		filepath.Join(dir, "two.img"),
		"missing.tif",
	}, files)
}

func TestParseArgs_Precedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"output_dir": "from-json", "buffer_distance": 100, "connectivity": 8}`), 0o644))
	envPath := filepath.Join(dir, "run.env")
	require.NoError(t, os.WriteFile(envPath, []byte("MCE_BUFFER_DISTANCE=200\nMCE_SIMPLIFY_TOLERANCE=7\n"), 0o644))

	var stderr bytes.Buffer
	opts, err := parseArgs([]string{
		"-config", jsonPath, "-env", envPath, "-tolerance", "3", "-verbose", "a.tif", "b.tif",
	}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "from-json", opts.cfg.OutputDir)
	assert.Equal(t, 8, opts.cfg.Connectivity)
	assert.Equal(t, 200.0, opts.cfg.BufferDistance)
	assert.Equal(t, 3.0, opts.cfg.SimplifyTolerance)
	assert.True(t, opts.verbose)
	assert.Equal(t, []string{"a.tif", "b.tif"}, opts.inputs)
}

func TestParseArgs_ConfiguredInput(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"input": "/maps/sheet.tif", "output_dir": "out"}`), 0o644))

	var stderr bytes.Buffer
	opts, err := parseArgs([]string{"-config", jsonPath}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, []string{"/maps/sheet.tif"}, opts.inputs)

	opts, err = parseArgs([]string{"-config", jsonPath, "other.tif"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, []string{"other.tif"}, opts.inputs)
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage:")

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"a.tif"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--output-dir")
}

func TestRun_Batch(t *testing.T) {
	in := t.TempDir()
	writeSheet(t, filepath.Join(in, "a_good.tif"), 200, 10)
	writeSheet(t, filepath.Join(in, "b_full.tif"), 50, 0)
	out := filepath.Join(t.TempDir(), "out")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-output-dir", out, "-buffer", "500", "-tolerance", "5", in}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "[1/2] clipped raster to ")
	assert.Contains(t, stdout.String(), filepath.Join(out, "a_good_clipped.tif"))
	assert.Contains(t, stderr.String(), "[2/2] ERROR: mask: ")
	assert.FileExists(t, filepath.Join(out, "a_good_clipped.tif"))
	assert.DirExists(t, filepath.Join(out, "temp", "a_good"))
}

func TestRun_DryRun(t *testing.T) {
	in := filepath.Join(t.TempDir(), "sheet.tif")
	writeSheet(t, in, 200, 10)
	out := filepath.Join(t.TempDir(), "out")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-output-dir", out, "-buffer", "500", "-tolerance", "5", "-artifacts=false", "-dry-run", in}, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "[1/1] would clip to ")
	assert.NoDirExists(t, out)
}
