package raster

import (
	"fmt"
	"unsafe"

	"gocv.io/x/gocv"
)

// Mat wraps the samples of r in a single-channel CV_32F matrix. The caller
// must Close it.
func (r *Raster) Mat() (gocv.Mat, error) {
	if len(r.Data) == 0 || len(r.Data) != r.Width*r.Height {
		return gocv.NewMat(), fmt.Errorf("raster: %d samples for %dx%d", len(r.Data), r.Width, r.Height)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&r.Data[0])), len(r.Data)*4)
	m, err := gocv.NewMatFromBytes(r.Height, r.Width, gocv.MatTypeCV32F, b)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("raster: wrapping samples: %w", err)
	}
	return m, nil
}
