package framestretch

import (
	"fmt"
	"sync"
)

// DisplayFrame is one rendered result: the RGBA raster plus the histogram
// and the display bounds that produced it. Discarded wholesale on the next
// render.
type DisplayFrame struct {
	RGBA      []byte
	Width     int
	Height    int
	Channels  int
	Histogram []uint32
	Min       float64
	Max       float64
}

// Renderer runs the full display pass for a raw frame under the current
// stretch settings. The pass itself is pure; the settings accessors are
// safe for concurrent use so a UI goroutine can retune while a render is
// in flight.
type Renderer struct {
	mu       sync.RWMutex
	settings StretchSettings
}

func NewRenderer(settings StretchSettings) *Renderer {
	return &Renderer{settings: settings}
}

func (r *Renderer) Settings() StretchSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

func (r *Renderer) SetSettings(settings StretchSettings) error {
	if err := settings.Finalize(); err != nil {
		return err
	}
	r.mu.Lock()
	r.settings = settings
	r.mu.Unlock()
	return nil
}

// Render demosaics the frame if it carries a Bayer pattern, resolves the
// display bounds per the settings, and produces the raster and histogram.
// A frame with no pixels yields (nil, nil): nothing to display, the caller
// shows a placeholder.
func (r *Renderer) Render(frame *RawFrame) (*DisplayFrame, error) {
	if frame == nil || len(frame.Pixels) == 0 {
		return nil, nil
	}

	img, err := Demosaic(frame.Pixels, frame.Width, frame.Height, frame.Pattern)
	if err != nil {
		return nil, err
	}

	order := frame.Order
	if img.Channels == 3 {
		order = RowMajor
	}

	settings := r.Settings()
	method := ParseStretchMethod(settings.Method)

	var min, max float64
	switch {
	case method == MethodNone:
		// Full-range ramp; the histogram still windows on observed values.
		min, max = img.MinPixelValue, img.MaxPixelValue

	case settings.AutoStretch && settings.UseRobustStretch:
		// Percentiles run on the undemosaiced samples when available.
		src, srcOrder, srcChannels := img.PixelData, order, img.Channels
		if img.IsDebayered {
			src, srcOrder, srcChannels = img.OriginalPixelData, frame.Order, 1
		}
		min, max = EstimatePercentiles(src, frame.Width, frame.Height,
			settings.RobustPercentile, srcOrder, srcChannels)

	case settings.AutoStretch:
		stats, err := ComputeStatistics(img.PixelData, img.BitsPerPixel)
		if err != nil {
			return nil, err
		}
		min, max = AutoStretchBounds(stats, img.MinPixelValue, img.MaxPixelValue)

	default:
		min, max = settings.MinPixelValue, settings.MaxPixelValue
	}

	lut, err := BuildLUT(min, max, method, img.BitsPerPixel)
	if err != nil {
		return nil, err
	}
	rgba, err := Rasterize(img.PixelData, img.Width, img.Height, lut, img.Channels)
	if err != nil {
		return nil, fmt.Errorf("rasterizing frame: %w", err)
	}
	hist, err := BuildHistogram(img.PixelData, img.Width, img.Height, min, max,
		DisplayBuckets, img.Channels, order)
	if err != nil {
		return nil, fmt.Errorf("building histogram: %w", err)
	}

	return &DisplayFrame{
		RGBA:      rgba,
		Width:     img.Width,
		Height:    img.Height,
		Channels:  img.Channels,
		Histogram: hist,
		Min:       min,
		Max:       max,
	}, nil
}

// Notifier is an explicit observer list for cross-component force-refresh,
// replacing the page-global broadcast event the browser UI used. Callbacks
// run synchronously on the broadcasting goroutine.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func())}
}

// Subscribe registers a callback and returns its cancel function.
func (n *Notifier) Subscribe(fn func()) (cancel func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Broadcast invokes every subscribed callback.
func (n *Notifier) Broadcast() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
