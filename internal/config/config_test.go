package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-content-extractor/internal/geo"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 4, c.Connectivity)
	assert.Equal(t, 100.0, c.SimplifyTolerance)
	assert.Equal(t, 5000.0, c.BufferDistance)
	assert.Equal(t, geo.WebMercator, c.ComparisonCRS)
	assert.Equal(t, geo.BufferStyle{Join: geo.JoinRound, QuadSegs: 8, MitreLimit: 5}, c.OutwardStyle())
	assert.Equal(t, geo.BufferStyle{Join: geo.JoinMitre, QuadSegs: 8, MitreLimit: 5}, c.InwardStyle())
	assert.True(t, c.WriteArtifacts)
	assert.False(t, c.DryRun)
}

func TestLoadFile_PartialOverlay(t *testing.T) {
	path := writeFile(t, "run.json", `{"buffer_distance": 2500, "inward_join": "bevel", "write_artifacts": false}`)

	c := Default()
	require.NoError(t, c.LoadFile(path))

	want := Default()
	want.BufferDistance = 2500
	want.InwardJoin = "bevel"
	want.WriteArtifacts = false
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("LoadFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		msg  string
	}{
		{"extension", func(t *testing.T) string { return writeFile(t, "run.yaml", "{}") }, ".json extension"},
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.json") }, "stat"},
		{"too large", func(t *testing.T) string {
			return writeFile(t, "big.json", `{"input":"`+strings.Repeat("x", 1<<20)+`"}`)
		}, "too large"},
		{"malformed", func(t *testing.T) string { return writeFile(t, "bad.json", "{") }, "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().LoadFile(tt.path(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestApplyEnvFile(t *testing.T) {
	path := writeFile(t, "run.env", strings.Join([]string{
		"MCE_CONNECTIVITY=8",
		"MCE_SIMPLIFY_TOLERANCE=25.5",
		"MCE_DRY_RUN=true",
		"MCE_OUTPUT_DIR=/data/out",
		"OTHER_SETTING=ignored",
	}, "\n"))

	c := Default()
	require.NoError(t, c.ApplyEnvFile(path))

	want := Default()
	want.Connectivity = 8
	want.SimplifyTolerance = 25.5
	want.DryRun = true
	want.OutputDir = "/data/out"
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("ApplyEnvFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEnv_Errors(t *testing.T) {
	assert.ErrorContains(t, Default().ApplyEnv(map[string]string{"MCE_COLOUR": "red"}), "MCE_COLOUR")
	assert.Error(t, Default().ApplyEnv(map[string]string{"MCE_BUFFER_DISTANCE": "far"}))
	assert.Error(t, Default().ApplyEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Input = "sheet.tif"
		c.OutputDir = "out"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no input", func(c *Config) { c.Input = "" }},
		{"no output", func(c *Config) { c.OutputDir = " " }},
		{"zero tolerance", func(c *Config) { c.SimplifyTolerance = 0 }},
		{"negative distance", func(c *Config) { c.BufferDistance = -1 }},
		{"connectivity", func(c *Config) { c.Connectivity = 6 }},
		{"outward join", func(c *Config) { c.OutwardJoin = "square" }},
		{"inward join", func(c *Config) { c.InwardJoin = "" }},
		{"comparison crs", func(c *Config) { c.ComparisonCRS = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestCheckCellSize(t *testing.T) {
	c := Default()
	c.BufferDistance = 30
	assert.NoError(t, c.CheckCellSize(29))
	assert.Error(t, c.CheckCellSize(30))
	assert.Error(t, c.CheckCellSize(31))
}

func TestForInput(t *testing.T) {
	c := Default()
	c.OutputDir = "/data/out"

	a := c.ForInput("/maps/sheet_12.tif")
	assert.Equal(t, "/maps/sheet_12.tif", a.Input)
	assert.Equal(t, filepath.Join("/data/out", "temp", "sheet_12"), a.WorkDir)
	assert.Empty(t, c.WorkDir)

	c.WorkDir = "/scratch"
	b := c.ForInput("sheet_13.img")
	assert.Equal(t, filepath.Join("/scratch", "sheet_13"), b.WorkDir)
}
