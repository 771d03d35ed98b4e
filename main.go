package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"map-content-extractor/internal/config"
	"map-content-extractor/internal/monitoring"
	"map-content-extractor/internal/pipeline"
)

var errUsage = errors.New("usage")

// options is the parsed command line.
type options struct {
	cfg     *config.Config
	inputs  []string
	verbose bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2
	}

	if opts.verbose {
		monitoring.SetLogger(log.New(stderr, "", log.LstdFlags).Printf)
	} else {
		monitoring.SetLogger(nil)
	}

	inputFiles, errs := expandInputs(opts.inputs)
	for _, err := range errs {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
	}

	total := len(inputFiles)
	failed := len(errs)
	for idx, filename := range inputFiles {
		status := fmt.Sprintf("[%d/%d] ", idx+1, total)
		line, err := process(opts.cfg, filename)
		if err != nil {
			failed++
			fmt.Fprintf(stderr, "%sERROR: %v\n", status, err)
			continue
		}
		fmt.Fprintln(stdout, status+line)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

// process runs one input in its own pipeline. Panics from the native
// libraries are reported as errors so the batch can continue.
func process(base *config.Config, filename string) (line string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("skipping '%s': %v", filename, r)
		}
	}()

	cfg := base.ForInput(filename)
	p, err := pipeline.New(cfg, nil)
	if err != nil {
		return "", err
	}
	res, err := p.Run()
	if err != nil {
		return "", err
	}

	pct := int(math.Round(res.Retained * 100))
	if cfg.DryRun {
		return fmt.Sprintf("would clip to %d%% (%s)", pct, filepath.Base(filename)), nil
	}
	return fmt.Sprintf("clipped raster to %d%% -> %s", pct, res.Output), nil
}

// parseArgs layers the configuration sources: defaults, -config JSON file,
// -env dotenv file, then any flag given explicitly. Positional arguments take
// the place of a configured input.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("map-content-extractor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configPath, envPath string
	var verbose bool
	fl := config.Default()

	fs.StringVar(&configPath, "config", "", "JSON settings file")
	fs.StringVar(&envPath, "env", "", "dotenv file with MCE_* settings")
	fs.BoolVar(&verbose, "verbose", false, "Print stage diagnostics")
	fs.StringVar(&fl.OutputDir, "output-dir", "", "Output directory for clipped rasters")
	fs.StringVar(&fl.WorkDir, "work-dir", "", "Parent directory for per-input artifacts (default <output-dir>/temp)")
	fs.Float64Var(&fl.BlankValue, "blank-value", fl.BlankValue, "Pixel value marking blank map margin")
	fs.IntVar(&fl.Connectivity, "connectivity", fl.Connectivity, "Blank region connectivity, 4 or 8")
	fs.Float64Var(&fl.SimplifyTolerance, "tolerance", fl.SimplifyTolerance, "Boundary simplification tolerance in CRS units")
	fs.Float64Var(&fl.BufferDistance, "buffer", fl.BufferDistance, "Margin around the content in CRS units")
	fs.StringVar(&fl.ComparisonCRS, "comparison-crs", fl.ComparisonCRS, "Projected CRS for comparing areas of geographic rasters")
	fs.StringVar(&fl.OutwardJoin, "outward-join", fl.OutwardJoin, "Join style of the outward buffer: round, mitre or bevel")
	fs.StringVar(&fl.InwardJoin, "inward-join", fl.InwardJoin, "Join style of the margin correction: round, mitre or bevel")
	fs.IntVar(&fl.QuadSegments, "quad-segments", fl.QuadSegments, "Segments per quarter circle of round joins")
	fs.Float64Var(&fl.MitreLimit, "mitre-limit", fl.MitreLimit, "Mitre ratio limit")
	fs.Float64Var(&fl.ClipNoData, "clip-nodata", fl.ClipNoData, "Nodata value for clipped pixels when the source has none")
	fs.BoolVar(&fl.WriteArtifacts, "artifacts", fl.WriteArtifacts, "Write intermediate geometries and a preview image")
	fs.BoolVar(&fl.DryRun, "dry-run", false, "Do not write the clipped raster")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg := config.Default()
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, err
		}
	}
	if envPath != "" {
		if err := cfg.ApplyEnvFile(envPath); err != nil {
			return nil, err
		}
	}
	var ferr error
	fs.Visit(func(f *flag.Flag) {
		if err := overrideFromFlag(cfg, fl, f.Name); err != nil && ferr == nil {
			ferr = err
		}
	})
	if ferr != nil {
		return nil, ferr
	}
	inputs := fs.Args()
	if len(inputs) == 0 && cfg.Input != "" {
		inputs = []string{cfg.Input}
	}
	if len(inputs) == 0 {
		fmt.Fprintf(stderr, "Usage: %s [options] rasters_or_directories...\n", fs.Name())
		fs.PrintDefaults()
		return nil, errUsage
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("provide --output-dir (or output_dir in the config file)")
	}
	return &options{cfg: cfg, inputs: inputs, verbose: verbose}, nil
}

// overrideFromFlag copies the field behind flag name from fl to cfg.
func overrideFromFlag(cfg, fl *config.Config, name string) error {
	switch name {
	case "config", "env", "verbose":
	case "output-dir":
		cfg.OutputDir = fl.OutputDir
	case "work-dir":
		cfg.WorkDir = fl.WorkDir
	case "blank-value":
		cfg.BlankValue = fl.BlankValue
	case "connectivity":
		cfg.Connectivity = fl.Connectivity
	case "tolerance":
		cfg.SimplifyTolerance = fl.SimplifyTolerance
	case "buffer":
		cfg.BufferDistance = fl.BufferDistance
	case "comparison-crs":
		cfg.ComparisonCRS = fl.ComparisonCRS
	case "outward-join":
		cfg.OutwardJoin = fl.OutwardJoin
	case "inward-join":
		cfg.InwardJoin = fl.InwardJoin
	case "quad-segments":
		cfg.QuadSegments = fl.QuadSegments
	case "mitre-limit":
		cfg.MitreLimit = fl.MitreLimit
	case "clip-nodata":
		cfg.ClipNoData = fl.ClipNoData
	case "artifacts":
		cfg.WriteArtifacts = fl.WriteArtifacts
	case "dry-run":
		cfg.DryRun = fl.DryRun
	default:
		return fmt.Errorf("unhandled flag -%s", name)
	}
	return nil
}
