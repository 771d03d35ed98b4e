// Package config holds the extraction settings and the layered loaders that
// fill them: defaults, a JSON file, an env file and finally command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"map-content-extractor/internal/geo"
)

// Config is the full set of run settings. JSON keys match the flag names.
type Config struct {
	Input     string `json:"input,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
	// WorkDir is the parent of the per-input artifact directories.
	// Empty means <OutputDir>/temp.
	WorkDir string `json:"work_dir,omitempty"`

	BlankValue        float64 `json:"blank_value"`
	Connectivity      int     `json:"connectivity"`
	SimplifyTolerance float64 `json:"simplify_tolerance"`
	BufferDistance    float64 `json:"buffer_distance"`
	ComparisonCRS     string  `json:"comparison_crs"`

	OutwardJoin  string  `json:"outward_join"`
	InwardJoin   string  `json:"inward_join"`
	QuadSegments int     `json:"quad_segments"`
	MitreLimit   float64 `json:"mitre_limit"`

	ClipNoData     float64 `json:"clip_nodata"`
	WriteArtifacts bool    `json:"write_artifacts"`
	DryRun         bool    `json:"dry_run"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BlankValue:        0,
		Connectivity:      4,
		SimplifyTolerance: 100,
		BufferDistance:    5000,
		ComparisonCRS:     geo.WebMercator,
		OutwardJoin:       string(geo.JoinRound),
		InwardJoin:        string(geo.JoinMitre),
		QuadSegments:      8,
		MitreLimit:        5,
		ClipNoData:        255,
		WriteArtifacts:    true,
	}
}

// LoadFile overlays the JSON file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}

// EnvPrefix marks the env-file keys read by ApplyEnvFile.
const EnvPrefix = "MCE_"

// ApplyEnvFile overlays MCE_* keys from a dotenv file onto c. Other keys are
// ignored; unknown MCE_* keys are an error.
func (c *Config) ApplyEnvFile(path string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}
	return c.ApplyEnv(env)
}

// ApplyEnv overlays MCE_* entries of env onto c.
func (c *Config) ApplyEnv(env map[string]string) error {
	for key, val := range env {
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if err := c.set(strings.TrimPrefix(key, EnvPrefix), strings.TrimSpace(val)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) set(name, val string) error {
	var err error
	switch name {
	case "INPUT":
		c.Input = val
	case "OUTPUT_DIR":
		c.OutputDir = val
	case "WORK_DIR":
		c.WorkDir = val
	case "BLANK_VALUE":
		c.BlankValue, err = strconv.ParseFloat(val, 64)
	case "CONNECTIVITY":
		c.Connectivity, err = strconv.Atoi(val)
	case "SIMPLIFY_TOLERANCE":
		c.SimplifyTolerance, err = strconv.ParseFloat(val, 64)
	case "BUFFER_DISTANCE":
		c.BufferDistance, err = strconv.ParseFloat(val, 64)
	case "COMPARISON_CRS":
		c.ComparisonCRS = val
	case "OUTWARD_JOIN":
		c.OutwardJoin = val
	case "INWARD_JOIN":
		c.InwardJoin = val
	case "QUAD_SEGMENTS":
		c.QuadSegments, err = strconv.Atoi(val)
	case "MITRE_LIMIT":
		c.MitreLimit, err = strconv.ParseFloat(val, 64)
	case "CLIP_NODATA":
		c.ClipNoData, err = strconv.ParseFloat(val, 64)
	case "WRITE_ARTIFACTS":
		c.WriteArtifacts, err = strconv.ParseBool(val)
	case "DRY_RUN":
		c.DryRun, err = strconv.ParseBool(val)
	default:
		return fmt.Errorf("unknown setting")
	}
	return err
}

// Validate checks the settings that do not depend on the raster.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.SimplifyTolerance <= 0 {
		return fmt.Errorf("simplify_tolerance must be positive, got %g", c.SimplifyTolerance)
	}
	if c.BufferDistance <= 0 {
		return fmt.Errorf("buffer_distance must be positive, got %g", c.BufferDistance)
	}
	if c.Connectivity != 4 && c.Connectivity != 8 {
		return fmt.Errorf("connectivity must be 4 or 8, got %d", c.Connectivity)
	}
	if _, err := geo.ParseJoinStyle(c.OutwardJoin); err != nil {
		return fmt.Errorf("outward_join: %w", err)
	}
	if _, err := geo.ParseJoinStyle(c.InwardJoin); err != nil {
		return fmt.Errorf("inward_join: %w", err)
	}
	if strings.TrimSpace(c.ComparisonCRS) == "" {
		return fmt.Errorf("comparison_crs is required")
	}
	return nil
}

// CheckCellSize rejects rasters whose cell is at least as large as the
// buffer distance, which would leave nothing for the margin correction.
func (c *Config) CheckCellSize(cell int) error {
	if float64(cell) >= c.BufferDistance {
		return fmt.Errorf("cell size %d must be smaller than buffer_distance %g", cell, c.BufferDistance)
	}
	return nil
}

// ForInput returns a copy of c for one input raster, with WorkDir pointing
// at that input's own artifact directory.
func (c *Config) ForInput(input string) *Config {
	out := *c
	out.Input = input
	parent := c.WorkDir
	if parent == "" {
		parent = filepath.Join(c.OutputDir, "temp")
	}
	out.WorkDir = filepath.Join(parent, Stem(input))
	return &out
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutwardStyle returns the buffer style of the outward (regularizing) buffer.
func (c *Config) OutwardStyle() geo.BufferStyle {
	return c.style(c.OutwardJoin, geo.JoinRound)
}

// InwardStyle returns the buffer style of the margin correction.
func (c *Config) InwardStyle() geo.BufferStyle {
	return c.style(c.InwardJoin, geo.JoinMitre)
}

func (c *Config) style(name string, fallback geo.JoinStyle) geo.BufferStyle {
	j, err := geo.ParseJoinStyle(name)
	if err != nil {
		j = fallback
	}
	return geo.BufferStyle{Join: j, QuadSegs: c.QuadSegments, MitreLimit: c.MitreLimit}
}
