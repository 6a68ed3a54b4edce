package framestretch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mosaic fills a width x height buffer with a per-cell-class value for the
// given pattern: 300 on red cells, 200 on green, 100 on blue.
func mosaic(width, height int, pattern BayerPattern) []uint16 {
	xOff, yOff := pattern.offsets()
	buf := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			evenRow := (y+yOff)%2 == 0
			evenCol := (x+xOff)%2 == 0
			switch {
			case evenRow && evenCol:
				buf[y*width+x] = 300
			case evenRow || evenCol:
				buf[y*width+x] = 200
			default:
				buf[y*width+x] = 100
			}
		}
	}
	return buf
}

func TestDemosaicPassthrough(t *testing.T) {
	mono := []uint16{10, 20, 30, 40}
	img, err := Demosaic(mono, 2, 2, PatternNone)
	require.NoError(t, err)

	assert.Equal(t, 1, img.Channels)
	assert.False(t, img.IsDebayered)
	assert.Equal(t, mono, img.PixelData)
	assert.Equal(t, 10.0, img.MinPixelValue)
	assert.Equal(t, 40.0, img.MaxPixelValue)
}

func TestDemosaicInteriorPixels(t *testing.T) {
	// With one constant value per cell class, bilinear interpolation must
	// reproduce the class values exactly away from the edges.
	patterns := []BayerPattern{PatternRGGB, PatternGRBG, PatternGBRG, PatternBGGR}
	for _, pattern := range patterns {
		t.Run(pattern.String(), func(t *testing.T) {
			img, err := Demosaic(mosaic(4, 4, pattern), 4, 4, pattern)
			require.NoError(t, err)
			require.Equal(t, 3, img.Channels)
			require.True(t, img.IsDebayered)
			require.Len(t, img.PixelData, 4*4*3)

			for y := 1; y <= 2; y++ {
				for x := 1; x <= 2; x++ {
					base := (y*4 + x) * 3
					assert.Equal(t, uint16(300), img.PixelData[base], "red at (%d,%d)", x, y)
					assert.Equal(t, uint16(200), img.PixelData[base+1], "green at (%d,%d)", x, y)
					assert.Equal(t, uint16(100), img.PixelData[base+2], "blue at (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestDemosaicEdgeClamping(t *testing.T) {
	// At the top-left red cell of an RGGB mosaic the out-of-frame neighbors
	// clamp back onto in-frame cells of other classes, so the interpolated
	// green and blue shift toward red.
	img, err := Demosaic(mosaic(4, 4, PatternRGGB), 4, 4, PatternRGGB)
	require.NoError(t, err)

	assert.Equal(t, uint16(300), img.PixelData[0])
	// g = (R, 200, R, 200) / 4
	assert.Equal(t, uint16(250), img.PixelData[1])
	// b = (R, 200, 200, 100) / 4
	assert.Equal(t, uint16(200), img.PixelData[2])
}

func TestDemosaicUniformFrame(t *testing.T) {
	mono := make([]uint16, 6*4)
	for i := range mono {
		mono[i] = 1000
	}
	for _, pattern := range []BayerPattern{PatternRGGB, PatternGRBG, PatternGBRG, PatternBGGR} {
		img, err := Demosaic(mono, 6, 4, pattern)
		require.NoError(t, err)
		for _, v := range img.PixelData {
			require.Equal(t, uint16(1000), v)
		}
		assert.Equal(t, 1000.0, img.MinPixelValue)
		assert.Equal(t, 1000.0, img.MaxPixelValue)
	}
}

func TestDemosaicRetainsOriginal(t *testing.T) {
	mono := mosaic(4, 4, PatternRGGB)
	img, err := Demosaic(mono, 4, 4, PatternRGGB)
	require.NoError(t, err)
	assert.Equal(t, mono, img.OriginalPixelData)
}

func TestDemosaicDimensionMismatch(t *testing.T) {
	_, err := Demosaic(make([]uint16, 10), 4, 4, PatternRGGB)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Demosaic(make([]uint16, 16), -4, -4, PatternRGGB)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestParseBayerPattern(t *testing.T) {
	assert.Equal(t, PatternRGGB, ParseBayerPattern("RGGB"))
	assert.Equal(t, PatternGRBG, ParseBayerPattern("grbg"))
	assert.Equal(t, PatternGBRG, ParseBayerPattern(" GBRG "))
	assert.Equal(t, PatternBGGR, ParseBayerPattern("BGGR"))
	assert.Equal(t, PatternNone, ParseBayerPattern(""))
	assert.Equal(t, PatternNone, ParseBayerPattern("XTRANS"))
}
