//go:build !purego && !js

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	stretch "framestretch/pkg/framestretch"
)

func loadNonFitsFrame(path string) (*stretch.RawFrame, error) {
	src := gocv.IMRead(path, gocv.IMReadUnchanged)
	if src.Empty() {
		return nil, fmt.Errorf("could not load image: %s", path)
	}
	defer src.Close()

	// Collapse color input to a single luminance channel
	gray := gocv.NewMat()
	defer gray.Close()
	if src.Channels() > 1 {
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	} else {
		src.CopyTo(&gray)
	}

	conv := gocv.NewMat()
	defer conv.Close()
	if gray.Type() == gocv.MatTypeCV8U {
		// Promote 8-bit input to the full 16-bit range
		gray.ConvertToWithParams(&conv, gocv.MatTypeCV16U, 257, 0)
	} else {
		gray.ConvertTo(&conv, gocv.MatTypeCV16U)
	}

	w, h := conv.Cols(), conv.Rows()
	data, err := conv.DataPtrUint16()
	if err != nil {
		return nil, fmt.Errorf("reading pixel data: %w", err)
	}
	pixels := make([]uint16, w*h)
	copy(pixels, data[:w*h])

	return &stretch.RawFrame{
		Pixels:   pixels,
		Width:    w,
		Height:   h,
		BitDepth: 16,
		Order:    stretch.RowMajor,
	}, nil
}
