package framestretch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatFrame(width, height int, value uint16) *RawFrame {
	pix := make([]uint16, width*height)
	for i := range pix {
		pix[i] = value
	}
	return &RawFrame{
		Pixels:   pix,
		Width:    width,
		Height:   height,
		BitDepth: 16,
	}
}

func TestRendererFlatFrame(t *testing.T) {
	// A constant frame yields a degenerate window: everything renders
	// black and the whole histogram collapses into bucket 0.
	r := NewRenderer(DefaultStretchSettings())
	display, err := r.Render(flatFrame(100, 100, 1000))
	require.NoError(t, err)
	require.NotNil(t, display)

	assert.Equal(t, 1000.0, display.Min)
	assert.Equal(t, 1000.0, display.Max)
	require.Len(t, display.RGBA, 100*100*4)
	for i := 0; i < len(display.RGBA); i += 4 {
		require.Equal(t, uint8(0), display.RGBA[i])
		require.Equal(t, uint8(255), display.RGBA[i+3])
	}
	assert.Equal(t, uint32(100*100), display.Histogram[0])
}

func TestRendererNoFrame(t *testing.T) {
	r := NewRenderer(DefaultStretchSettings())

	display, err := r.Render(nil)
	require.NoError(t, err)
	assert.Nil(t, display)

	display, err = r.Render(&RawFrame{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Nil(t, display)
}

func TestRendererManualBounds(t *testing.T) {
	settings := DefaultStretchSettings()
	settings.AutoStretch = false
	settings.MinPixelValue = 500
	settings.MaxPixelValue = 1500

	r := NewRenderer(settings)
	display, err := r.Render(flatFrame(4, 4, 1000))
	require.NoError(t, err)

	assert.Equal(t, 500.0, display.Min)
	assert.Equal(t, 1500.0, display.Max)
	// 1000 sits mid-window.
	assert.Equal(t, uint8(128), display.RGBA[0])
}

func TestRendererMethodNone(t *testing.T) {
	settings := DefaultStretchSettings()
	settings.Method = "none"

	r := NewRenderer(settings)
	display, err := r.Render(flatFrame(4, 4, 1000))
	require.NoError(t, err)

	// The full-range ramp maps 1000/65535 of the way up.
	assert.Equal(t, uint8(4), display.RGBA[0])
}

func TestRendererBayerFrame(t *testing.T) {
	frame := flatFrame(4, 4, 1000)
	frame.Pattern = PatternRGGB

	r := NewRenderer(DefaultStretchSettings())
	display, err := r.Render(frame)
	require.NoError(t, err)

	assert.Equal(t, 3, display.Channels)
	assert.Len(t, display.RGBA, 4*4*4)
	assert.Equal(t, uint32(16), display.Histogram[0])
}

func TestRendererSetSettingsValidates(t *testing.T) {
	r := NewRenderer(DefaultStretchSettings())

	bad := DefaultStretchSettings()
	bad.RobustPercentile = 50
	assert.Error(t, r.SetSettings(bad))
	assert.Equal(t, 98.0, r.Settings().RobustPercentile)

	good := DefaultStretchSettings()
	good.Method = "log"
	require.NoError(t, r.SetSettings(good))
	assert.Equal(t, "log", r.Settings().Method)
}

func TestNotifier(t *testing.T) {
	n := NewNotifier()

	var first, second int
	cancel := n.Subscribe(func() { first++ })
	n.Subscribe(func() { second++ })

	n.Broadcast()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)

	cancel()
	n.Broadcast()
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}
