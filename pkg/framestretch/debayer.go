package framestretch

// Demosaic converts a mosaiced mono sample buffer into a row-major
// interleaved RGB buffer by bilinear interpolation over the 2x2 pattern
// neighborhood. Edge pixels use clamped (replicated) neighbor lookups.
//
// Cell layout relative to RGGB (row-major, 0-indexed):
//
//	(even row, even col) = R
//	(even row, odd  col) = G  (Gr)
//	(odd  row, even col) = G  (Gb)
//	(odd  row, odd  col) = B
//
// Other patterns shift the cell lookup by the pattern's x/y offset.
// PatternNone is a passthrough: the result stays mono with one channel.
func Demosaic[T Sample](mono []T, width, height int, pattern BayerPattern) (*ProcessedImage[T], error) {
	if err := checkBufferLen(mono, width, height, 1); err != nil {
		return nil, err
	}

	if pattern == PatternNone {
		lo, hi := observedRange(mono)
		return &ProcessedImage[T]{
			Width:         width,
			Height:        height,
			Channels:      1,
			BitsPerPixel:  bitsOf[T](),
			PixelData:     mono,
			IsDebayered:   false,
			MinPixelValue: lo,
			MaxPixelValue: hi,
		}, nil
	}

	out := make([]T, width*height*3)
	xOff, yOff := pattern.offsets()

	clampX := func(x int) int {
		if x < 0 {
			return 0
		}
		if x >= width {
			return width - 1
		}
		return x
	}
	clampY := func(y int) int {
		if y < 0 {
			return 0
		}
		if y >= height {
			return height - 1
		}
		return y
	}
	px := func(x, y int) float64 {
		return float64(mono[clampY(y)*width+clampX(x)])
	}

	for y := 0; y < height; y++ {
		evenRow := (y+yOff)%2 == 0
		for x := 0; x < width; x++ {
			evenCol := (x+xOff)%2 == 0
			var r, g, b float64

			switch {
			case evenRow && evenCol:
				// Red cell — have R, interpolate G and B
				r = px(x, y)
				g = (px(x-1, y) + px(x+1, y) + px(x, y-1) + px(x, y+1)) / 4
				b = (px(x-1, y-1) + px(x+1, y-1) + px(x-1, y+1) + px(x+1, y+1)) / 4

			case evenRow && !evenCol:
				// Green on red row (Gr)
				r = (px(x-1, y) + px(x+1, y)) / 2
				g = px(x, y)
				b = (px(x, y-1) + px(x, y+1)) / 2

			case !evenRow && evenCol:
				// Green on blue row (Gb)
				r = (px(x, y-1) + px(x, y+1)) / 2
				g = px(x, y)
				b = (px(x-1, y) + px(x+1, y)) / 2

			default:
				// Blue cell — have B, interpolate R and G
				r = (px(x-1, y-1) + px(x+1, y-1) + px(x-1, y+1) + px(x+1, y+1)) / 4
				g = (px(x-1, y) + px(x+1, y) + px(x, y-1) + px(x, y+1)) / 4
				b = px(x, y)
			}

			base := (y*width + x) * 3
			out[base] = T(r)
			out[base+1] = T(g)
			out[base+2] = T(b)
		}
	}

	lo, hi := observedRange(out)
	return &ProcessedImage[T]{
		Width:             width,
		Height:            height,
		Channels:          3,
		BitsPerPixel:      bitsOf[T](),
		PixelData:         out,
		IsDebayered:       true,
		OriginalPixelData: mono,
		MinPixelValue:     lo,
		MaxPixelValue:     hi,
	}, nil
}
