package framestretch

import "fmt"

// Rasterize applies a stretch LUT to every pixel, producing an RGBA byte
// buffer ready to blit to a canvas. Mono input replicates the looked-up
// value across R, G and B; RGB input indexes each channel through the same
// table (channels are assumed to share one raw value range). Alpha is
// always 255. Sample values beyond the table render as 0.
//
// Runs in a single O(width*height) pass; the curve cost lives in BuildLUT.
func Rasterize[T Sample](pix []T, width, height int, lut []uint8, channels int) ([]byte, error) {
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChannels, channels)
	}
	if err := checkBufferLen(pix, width, height, channels); err != nil {
		return nil, err
	}

	pixelCount := width * height
	out := make([]byte, pixelCount*4)

	if channels == 1 {
		for idx := 0; idx < pixelCount; idx++ {
			var display uint8
			if v := int(pix[idx]); v < len(lut) {
				display = lut[v]
			}
			tgt := idx * 4
			out[tgt] = display
			out[tgt+1] = display
			out[tgt+2] = display
			out[tgt+3] = 255
		}
		return out, nil
	}

	for idx := 0; idx < pixelCount; idx++ {
		base := idx * 3
		tgt := idx * 4
		var r, g, b uint8
		if v := int(pix[base]); v < len(lut) {
			r = lut[v]
		}
		if v := int(pix[base+1]); v < len(lut) {
			g = lut[v]
		}
		if v := int(pix[base+2]); v < len(lut) {
			b = lut[v]
		}
		out[tgt] = r
		out[tgt+1] = g
		out[tgt+2] = b
		out[tgt+3] = 255
	}
	return out, nil
}
