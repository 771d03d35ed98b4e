package raster

import (
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.tif"))
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestWriteOpen_KeepsPaletteAndGeoreference(t *testing.T) {
	r := New(4, 3, Affine{500000, 30, 0, 4200000, 0, -30}, testCRS(t))
	for i := range r.Data {
		r.Data[i] = float32(i % 2)
	}
	r.Colormap = []color.RGBA{{255, 255, 255, 255}, {10, 20, 30, 255}}
	r.NoData, r.HasNoData = 255, true

	path := filepath.Join(t.TempDir(), "sheet.tif")
	require.NoError(t, Write(path, r))

	got, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, r.Width, got.Width)
	assert.Equal(t, r.Height, got.Height)
	assert.Equal(t, r.Transform, got.Transform)
	assert.Equal(t, r.Data, got.Data)
	assert.Equal(t, 255.0, got.NoData)
	require.GreaterOrEqual(t, len(got.Colormap), 2)
	assert.Equal(t, r.Colormap, got.Colormap[:2])
	assert.False(t, got.CRS.Geographic())
	assert.Equal(t, 30, got.CellSize())
}

func TestWriteOpen_PNGStaysPNG(t *testing.T) {
	r := New(5, 4, Affine{1000, 2, 0, 2000, 0, -2}, testCRS(t))
	for i := range r.Data {
		r.Data[i] = float32(i % 3)
	}
	r.Colormap = []color.RGBA{{255, 255, 255, 255}, {200, 0, 0, 255}, {0, 0, 200, 255}}

	path := filepath.Join(t.TempDir(), "sheet_clipped.png")
	require.NoError(t, Write(path, r))

	head := make([]byte, 8)
	f, err := os.Open(path)
	require.NoError(t, err)
	_, err = io.ReadFull(f, head)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), head)

	got, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, r.Data, got.Data)
	assert.Equal(t, r.Transform, got.Transform)
	require.GreaterOrEqual(t, len(got.Colormap), 3)
	assert.Equal(t, r.Colormap, got.Colormap[:3])
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		path   string
		driver godal.DriverName
		direct bool
	}{
		{"a.tif", godal.GTiff, true},
		{"a.TIFF", godal.GTiff, true},
		{"a.img", "HFA", true},
		{"a.png", "PNG", false},
		{"a.JPG", "JPEG", false},
	}
	for _, tt := range tests {
		drv, direct := driverFor(tt.path)
		assert.Equal(t, tt.driver, drv, tt.path)
		assert.Equal(t, tt.direct, direct, tt.path)
	}
}

func TestWrite_RejectsWideTypes(t *testing.T) {
	r := New(2, 2, Affine{0, 1, 0, 2, 0, -1}, testCRS(t))
	r.dataType = godal.Float64
	err := Write(filepath.Join(t.TempDir(), "wide.tif"), r)
	assert.ErrorIs(t, err, ErrUnsupportedDataType)
}

func TestOpen_RejectsWideTypes(t *testing.T) {
	register()
	path := filepath.Join(t.TempDir(), "wide.tif")
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Int32, 2, 2)
	require.NoError(t, err)
	require.NoError(t, ds.SetGeoTransform([6]float64{0, 1, 0, 2, 0, -1}))
	require.NoError(t, ds.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrUnsupportedDataType)
}
