// Package framestretch turns raw camera frames into 8-bit RGBA rasters for
// on-screen display: optional Bayer demosaic, robust black/white point
// estimation, lookup-table stretch, rasterization and histogram binning.
// Every pass is pure and allocates its own output; nothing is retained
// between invocations.
package framestretch

import (
	"errors"
	"fmt"
	"strings"
)

// Sample is a raw pixel sample as delivered by a camera: 8, 16 or 32 bits.
type Sample interface {
	~uint8 | ~uint16 | ~uint32
}

// BayerPattern identifies the 2x2 color-filter arrangement of a mosaiced
// sensor frame.
type BayerPattern int

const (
	PatternNone BayerPattern = iota
	PatternRGGB
	PatternGRBG
	PatternGBRG
	PatternBGGR
)

func (p BayerPattern) String() string {
	switch p {
	case PatternNone:
		return "none"
	case PatternRGGB:
		return "RGGB"
	case PatternGRBG:
		return "GRBG"
	case PatternGBRG:
		return "GBRG"
	case PatternBGGR:
		return "BGGR"
	default:
		return "unknown"
	}
}

// ParseBayerPattern maps a pattern name (as found in camera metadata, e.g.
// the FITS BAYERPAT header) to a BayerPattern. Unknown or empty names map
// to PatternNone.
func ParseBayerPattern(s string) BayerPattern {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RGGB":
		return PatternRGGB
	case "GRBG":
		return PatternGRBG
	case "GBRG":
		return PatternGBRG
	case "BGGR":
		return PatternBGGR
	default:
		return PatternNone
	}
}

// offsets translates a pattern into x/y shifts against the canonical RGGB
// cell layout: cell (even,even)=R, (even,odd)=G, (odd,even)=G, (odd,odd)=B.
func (p BayerPattern) offsets() (xOffset, yOffset int) {
	switch p {
	case PatternGRBG:
		return 1, 0
	case PatternGBRG:
		return 0, 1
	case PatternBGGR:
		return 1, 1
	default:
		return 0, 0
	}
}

// SampleOrder describes the memory layout of a mono sample buffer. Legacy
// device transfers deliver column-major data; demosaiced RGB buffers are
// always row-major interleaved.
type SampleOrder int

const (
	RowMajor SampleOrder = iota
	ColumnMajor
)

func (o SampleOrder) String() string {
	if o == ColumnMajor {
		return "column-major"
	}
	return "row-major"
}

// StretchMethod selects the response curve used to map raw sample values
// to display brightness.
type StretchMethod int

const (
	// MethodNone maps the full raw range linearly, ignoring black/white
	// points. Diagnostic mode.
	MethodNone StretchMethod = iota
	MethodLinear
	MethodLog
)

func (m StretchMethod) String() string {
	switch m {
	case MethodLinear:
		return "linear"
	case MethodLog:
		return "log"
	default:
		return "none"
	}
}

// ParseStretchMethod maps a method name to a StretchMethod. Unknown names
// map to MethodNone.
func ParseStretchMethod(s string) StretchMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return MethodLinear
	case "log":
		return MethodLog
	default:
		return MethodNone
	}
}

// ErrInvalidDimensions reports a pixel buffer whose length does not match
// the declared width, height and channel count. The caller must not render.
var ErrInvalidDimensions = errors.New("pixel buffer length does not match dimensions")

// ErrInvalidChannels reports a channel count other than 1 (mono) or 3 (RGB).
var ErrInvalidChannels = errors.New("channel count must be 1 or 3")

// RawFrame is an immutable camera frame as delivered by a frame source:
// one unsigned sample per sensor cell, plus the metadata needed to display
// it. Mosaiced frames carry the sensor's Bayer pattern.
type RawFrame struct {
	Pixels   []uint16
	Width    int
	Height   int
	BitDepth int
	Pattern  BayerPattern
	Order    SampleOrder
	Headers  map[string]string
}

// ProcessedImage is the demosaic output, created fresh per frame or
// settings change and never mutated in place. OriginalPixelData retains the
// pre-demosaic buffer so robust percentile estimation can run on the
// undemosaiced samples.
type ProcessedImage[T Sample] struct {
	Width             int
	Height            int
	Channels          int
	BitsPerPixel      int
	PixelData         []T
	IsDebayered       bool
	OriginalPixelData []T
	MinPixelValue     float64
	MaxPixelValue     float64
}

// bitsOf returns the storage width of the sample type in bits.
func bitsOf[T Sample]() int {
	switch any(T(0)).(type) {
	case uint8:
		return 8
	case uint16:
		return 16
	default:
		return 32
	}
}

// defaultRange returns the full representable range for the sample type,
// used when a buffer yields no usable signal.
func defaultRange[T Sample]() (float64, float64) {
	switch bitsOf[T]() {
	case 8:
		return 0, 255
	case 16:
		return 0, 65535
	default:
		return 0, float64(1<<32 - 1)
	}
}

// observedRange scans a buffer for its true extrema. These are the observed
// values, not the robust/windowed display bounds.
func observedRange[T Sample](pix []T) (float64, float64) {
	if len(pix) == 0 {
		return 0, 0
	}
	lo, hi := pix[0], pix[0]
	for _, v := range pix[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return float64(lo), float64(hi)
}

func checkBufferLen[T Sample](pix []T, width, height, channels int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(pix) != width*height*channels {
		return fmt.Errorf("%w: have %d samples, want %dx%dx%d",
			ErrInvalidDimensions, len(pix), width, height, channels)
	}
	return nil
}
