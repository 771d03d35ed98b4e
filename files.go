package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expandInputs replaces each directory argument by the rasters it contains.
// Plain file arguments are kept as given, even if missing, so the open stage
// reports them.
func expandInputs(args []string) ([]string, []error) {
	var files []string
	var errs []error
	for _, arg := range args {
		if !isDir(arg) {
			files = append(files, arg)
			continue
		}
		dirFiles, err := expandDirectory(arg)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to list directory '%s': %w", arg, err))
			continue
		}
		files = append(files, dirFiles...)
	}
	return files, errs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func expandDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var rasterFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if isRasterFile(path) {
			rasterFiles = append(rasterFiles, path)
		}
	}

	return rasterFiles, nil
}

func isRasterFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tif" || ext == ".tiff" || ext == ".img" ||
		ext == ".png" || ext == ".jpg" || ext == ".jpeg"
}
