package framestretch

import (
	"fmt"

	"github.com/chewxy/math32"
)

// logCurveK shapes the logarithmic stretch: display = log(1+k*t)/log(1+k)
// over the windowed t in [0,1]. 255 gives roughly 8 stops of shadow lift.
const logCurveK float32 = 255

// LUTSize returns the lookup-table length for a sample bit depth. 32-bit
// data shares the 16-bit table; samples beyond the table render as 0, an
// accepted approximation (full 2^32-entry tables are not worth the memory).
func LUTSize(bitsPerPixel int) (int, error) {
	switch bitsPerPixel {
	case 8:
		return 256, nil
	case 16, 32:
		return 65536, nil
	default:
		return 0, fmt.Errorf("unsupported bits per pixel: %d", bitsPerPixel)
	}
}

// BuildLUT precomputes the raw-sample-to-display-brightness mapping for one
// redraw, so the rasterizer can run a single array lookup per channel
// instead of evaluating the curve per pixel.
//
// MethodNone ignores min/max and maps the full table range linearly.
// MethodLinear windows [min,max] onto [0,255]. MethodLog applies the
// logarithmic curve over the same window. A degenerate window (max <= min)
// yields an all-zero constant table; flat frames must still render.
func BuildLUT(min, max float64, method StretchMethod, bitsPerPixel int) ([]uint8, error) {
	size, err := LUTSize(bitsPerPixel)
	if err != nil {
		return nil, err
	}
	lut := make([]uint8, size)

	if method == MethodNone {
		scale := 255 / float32(size-1)
		for i := range lut {
			lut[i] = clampByte(float32(i) * scale)
		}
		return lut, nil
	}

	if max <= min {
		// Constant output, no divide by zero.
		return lut, nil
	}

	span := float32(max - min)
	fmin := float32(min)
	logDenom := math32.Log(1 + logCurveK)

	for i := range lut {
		t := (float32(i) - fmin) / span
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		switch method {
		case MethodLog:
			lut[i] = clampByte(math32.Log(1+logCurveK*t) / logDenom * 255)
		default:
			lut[i] = clampByte(t * 255)
		}
	}
	return lut, nil
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
