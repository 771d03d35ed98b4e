package raster

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"

	"map-content-extractor/internal/geo"
	"map-content-extractor/internal/monitoring"
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(godal.RegisterAll)
}

// Open reads the first band of the raster at path.
func Open(path string) (*Raster, error) {
	register()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputNotFound, path, err)
	}
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputNotFound, path, err)
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("raster: %s has no bands", path)
	}
	band := bands[0]
	st := band.Structure()
	if !fitsFloat32(st.DataType) {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedDataType, path, st.DataType)
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("raster: %s: reading geotransform: %w", path, err)
	}
	crs, err := datasetCRS(ds)
	if err != nil {
		return nil, fmt.Errorf("raster: %s: %w", path, err)
	}

	r := &Raster{
		Width:     st.SizeX,
		Height:    st.SizeY,
		Data:      make([]float32, st.SizeX*st.SizeY),
		Transform: Affine(gt),
		CRS:       crs,
		dataType:  st.DataType,
	}
	if err := band.Read(0, 0, r.Data, r.Width, r.Height); err != nil {
		return nil, fmt.Errorf("raster: %s: reading band: %w", path, err)
	}
	r.NoData, r.HasNoData = band.NoData()

	for _, e := range band.ColorTable().Entries {
		r.Colormap = append(r.Colormap, color.RGBA{R: uint8(e[0]), G: uint8(e[1]), B: uint8(e[2]), A: uint8(e[3])})
	}

	monitoring.Logf("raster: %s %dx%d %s cell=%d colormap=%d", filepath.Base(path), r.Width, r.Height, st.DataType, r.CellSize(), len(r.Colormap))
	return r, nil
}

func datasetCRS(ds *godal.Dataset) (*geo.CRS, error) {
	sr := ds.SpatialRef()
	if sr == nil {
		return nil, geo.ErrMissingCRS
	}
	defer sr.Close()
	wkt, err := sr.WKT()
	if err != nil {
		return nil, fmt.Errorf("exporting crs: %w", err)
	}
	return geo.ParseCRS(wkt)
}

// Write stores r as a single-band raster at path in the format named by the
// file extension: .img is HFA, .png PNG, .jpg/.jpeg JPEG and anything else
// GeoTIFF. PNG and JPEG have no direct-create support in GDAL, so they are
// assembled in memory and translated.
func Write(path string, r *Raster) error {
	register()
	if r.CRS == nil {
		return geo.ErrMissingCRS
	}
	dtype := r.dataType
	if dtype == godal.Unknown {
		dtype = godal.Float32
	}
	if !fitsFloat32(dtype) {
		return fmt.Errorf("%w: %s", ErrUnsupportedDataType, dtype)
	}
	drv, direct := driverFor(path)
	if direct {
		ds, err := godal.Create(drv, path, 1, dtype, r.Width, r.Height)
		if err != nil {
			return fmt.Errorf("raster: creating %s: %w", path, err)
		}
		if err := writeDataset(ds, r); err != nil {
			ds.Close()
			return fmt.Errorf("raster: writing %s: %w", path, err)
		}
		if err := ds.Close(); err != nil {
			return fmt.Errorf("raster: closing %s: %w", path, err)
		}
		return nil
	}

	mem, err := godal.Create(godal.Memory, "", 1, dtype, r.Width, r.Height)
	if err != nil {
		return fmt.Errorf("raster: creating in-memory copy of %s: %w", path, err)
	}
	defer mem.Close()
	if err := writeDataset(mem, r); err != nil {
		return fmt.Errorf("raster: writing %s: %w", path, err)
	}
	out, err := mem.Translate(path, []string{"-of", string(drv)})
	if err != nil {
		return fmt.Errorf("raster: translating to %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("raster: closing %s: %w", path, err)
	}
	return nil
}

func writeDataset(ds *godal.Dataset, r *Raster) error {
	if err := ds.SetGeoTransform([6]float64(r.Transform)); err != nil {
		return err
	}
	sr, err := godal.NewSpatialRefFromWKT(r.CRS.Def)
	if err != nil {
		sr, err = godal.NewSpatialRefFromProj4(r.CRS.Def)
		if err != nil {
			return err
		}
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		return err
	}

	band := ds.Bands()[0]
	if r.HasNoData {
		if err := band.SetNoData(r.NoData); err != nil {
			return err
		}
	}
	if err := band.Write(0, 0, r.Data, r.Width, r.Height); err != nil {
		return err
	}
	if len(r.Colormap) > 0 {
		ct := godal.ColorTable{PaletteInterp: godal.RGBPalette, Entries: make([][4]int16, len(r.Colormap))}
		for i, c := range r.Colormap {
			ct.Entries[i] = [4]int16{int16(c.R), int16(c.G), int16(c.B), int16(c.A)}
		}
		if err := band.SetColorTable(ct); err != nil {
			return err
		}
	}
	return nil
}

// fitsFloat32 reports whether every value of dt is exact as a float32 sample.
func fitsFloat32(dt godal.DataType) bool {
	switch dt {
	case godal.Byte, godal.UInt16, godal.Int16, godal.Float32:
		return true
	}
	return false
}

// driverFor picks the GDAL driver for path and reports whether it can create
// datasets directly.
func driverFor(path string) (godal.DriverName, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".img":
		return godal.DriverName("HFA"), true
	case ".png":
		return godal.DriverName("PNG"), false
	case ".jpg", ".jpeg":
		return godal.DriverName("JPEG"), false
	default:
		return godal.GTiff, true
	}
}
