//go:build js && wasm

package main

import (
	"encoding/binary"
	"syscall/js"

	stretch "framestretch/pkg/framestretch"
)

func main() {
	js.Global().Set("renderFrame", js.FuncOf(renderFrame))
	js.Global().Set("estimateStretch", js.FuncOf(estimateStretch))
	js.Global().Set("demosaicFrame", js.FuncOf(demosaicFrame))
	js.Global().Set("buildStretchLUT", js.FuncOf(buildStretchLUT))
	js.Global().Set("computeHistogram", js.FuncOf(computeHistogram))
	select {} // block forever
}

// renderFrame(samples, width, height, bitsPerPixel, options) runs the full
// display pipeline and returns {rgba, width, height, channels, histogram,
// min, max}. samples is a Uint8Array of little-endian packed pixel values
// at the given bit width; options may carry method, autostretch,
// robuststretch, robustpercentile, min, max, bayerPattern and columnMajor.
func renderFrame(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("usage: renderFrame(samples, width, height, bitsPerPixel, options)")
	}

	raw := copyBytes(args[0])
	width := args[1].Int()
	height := args[2].Int()
	bits := args[3].Int()

	opts := js.Undefined()
	if len(args) >= 5 {
		opts = args[4]
	}
	settings, pattern, order := parseOptions(opts)

	switch bits {
	case 8:
		return runPipeline(raw, width, height, 8, settings, pattern, order)
	case 16:
		return runPipeline(decodeUint16(raw), width, height, 16, settings, pattern, order)
	case 32:
		return runPipeline(decodeUint32(raw), width, height, 32, settings, pattern, order)
	default:
		return errorResult("bitsPerPixel must be 8, 16 or 32")
	}
}

// estimateStretch(samples, width, height, bitsPerPixel, options) returns
// just the robust display bounds {min, max} without rendering.
func estimateStretch(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("usage: estimateStretch(samples, width, height, bitsPerPixel, options)")
	}

	raw := copyBytes(args[0])
	width := args[1].Int()
	height := args[2].Int()
	bits := args[3].Int()

	opts := js.Undefined()
	if len(args) >= 5 {
		opts = args[4]
	}
	settings, _, order := parseOptions(opts)

	var min, max float64
	switch bits {
	case 8:
		min, max = stretch.EstimatePercentiles(raw, width, height, settings.RobustPercentile, order, 1)
	case 16:
		min, max = stretch.EstimatePercentiles(decodeUint16(raw), width, height, settings.RobustPercentile, order, 1)
	case 32:
		min, max = stretch.EstimatePercentiles(decodeUint32(raw), width, height, settings.RobustPercentile, order, 1)
	default:
		return errorResult("bitsPerPixel must be 8, 16 or 32")
	}

	return js.ValueOf(map[string]interface{}{"min": min, "max": max})
}

// demosaicFrame(samples, width, height, bitsPerPixel, pattern) runs just
// the demosaic pass and returns {pixels, channels, isDebayered, min, max},
// with pixels packed back into little-endian bytes at the input bit width.
func demosaicFrame(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return errorResult("usage: demosaicFrame(samples, width, height, bitsPerPixel, pattern)")
	}

	raw := copyBytes(args[0])
	width := args[1].Int()
	height := args[2].Int()
	bits := args[3].Int()
	pattern := stretch.ParseBayerPattern(args[4].String())

	switch bits {
	case 8:
		return runDemosaic(raw, width, height, pattern)
	case 16:
		return runDemosaic(decodeUint16(raw), width, height, pattern)
	case 32:
		return runDemosaic(decodeUint32(raw), width, height, pattern)
	default:
		return errorResult("bitsPerPixel must be 8, 16 or 32")
	}
}

// buildStretchLUT(min, max, method, bitsPerPixel) returns the stretch table
// as a Uint8Array.
func buildStretchLUT(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("usage: buildStretchLUT(min, max, method, bitsPerPixel)")
	}

	min := args[0].Float()
	max := args[1].Float()
	method := stretch.ParseStretchMethod(args[2].String())
	bits := args[3].Int()

	lut, err := stretch.BuildLUT(min, max, method, bits)
	if err != nil {
		return errorResult("LUT error: " + err.Error())
	}

	jsLUT := js.Global().Get("Uint8Array").New(len(lut))
	js.CopyBytesToJS(jsLUT, lut)
	return jsLUT
}

// computeHistogram(samples, width, height, bitsPerPixel, min, max, channels,
// columnMajor) returns the 256-bucket display histogram.
func computeHistogram(this js.Value, args []js.Value) interface{} {
	if len(args) < 7 {
		return errorResult("usage: computeHistogram(samples, width, height, bitsPerPixel, min, max, channels, columnMajor)")
	}

	raw := copyBytes(args[0])
	width := args[1].Int()
	height := args[2].Int()
	bits := args[3].Int()
	min := args[4].Float()
	max := args[5].Float()
	channels := args[6].Int()
	order := stretch.RowMajor
	if len(args) >= 8 && args[7].Truthy() {
		order = stretch.ColumnMajor
	}

	switch bits {
	case 8:
		return runHistogram(raw, width, height, min, max, channels, order)
	case 16:
		return runHistogram(decodeUint16(raw), width, height, min, max, channels, order)
	case 32:
		return runHistogram(decodeUint32(raw), width, height, min, max, channels, order)
	default:
		return errorResult("bitsPerPixel must be 8, 16 or 32")
	}
}

func runDemosaic[T stretch.Sample](samples []T, width, height int, pattern stretch.BayerPattern) interface{} {
	img, err := stretch.Demosaic(samples, width, height, pattern)
	if err != nil {
		return errorResult("demosaic error: " + err.Error())
	}

	packed := encodeSamples(img.PixelData)
	jsPixels := js.Global().Get("Uint8Array").New(len(packed))
	js.CopyBytesToJS(jsPixels, packed)

	return js.ValueOf(map[string]interface{}{
		"pixels":      jsPixels,
		"channels":    img.Channels,
		"isDebayered": img.IsDebayered,
		"min":         img.MinPixelValue,
		"max":         img.MaxPixelValue,
	})
}

func runHistogram[T stretch.Sample](samples []T, width, height int, min, max float64, channels int, order stretch.SampleOrder) interface{} {
	hist, err := stretch.BuildHistogram(samples, width, height, min, max,
		stretch.DisplayBuckets, channels, order)
	if err != nil {
		return errorResult("histogram error: " + err.Error())
	}

	jsHist := make([]interface{}, len(hist))
	for i, c := range hist {
		jsHist[i] = int(c)
	}
	return js.ValueOf(jsHist)
}

func runPipeline[T stretch.Sample](samples []T, width, height, bits int, settings stretch.StretchSettings, pattern stretch.BayerPattern, order stretch.SampleOrder) interface{} {
	img, err := stretch.Demosaic(samples, width, height, pattern)
	if err != nil {
		return errorResult("demosaic error: " + err.Error())
	}
	if img.IsDebayered {
		order = stretch.RowMajor
	}

	method := stretch.ParseStretchMethod(settings.Method)
	var min, max float64
	switch {
	case method == stretch.MethodNone:
		min, max = img.MinPixelValue, img.MaxPixelValue
	case settings.AutoStretch && settings.UseRobustStretch:
		src, srcOrder, srcChannels := img.PixelData, order, img.Channels
		if img.IsDebayered {
			src, srcOrder, srcChannels = img.OriginalPixelData, stretch.RowMajor, 1
		}
		min, max = stretch.EstimatePercentiles(src, width, height,
			settings.RobustPercentile, srcOrder, srcChannels)
	case settings.AutoStretch:
		stats, err := stretch.ComputeStatistics(img.PixelData, bits)
		if err != nil {
			return errorResult("statistics error: " + err.Error())
		}
		min, max = stretch.AutoStretchBounds(stats, img.MinPixelValue, img.MaxPixelValue)
	default:
		min, max = settings.MinPixelValue, settings.MaxPixelValue
	}

	lut, err := stretch.BuildLUT(min, max, method, bits)
	if err != nil {
		return errorResult("LUT error: " + err.Error())
	}
	rgba, err := stretch.Rasterize(img.PixelData, width, height, lut, img.Channels)
	if err != nil {
		return errorResult("rasterize error: " + err.Error())
	}
	hist, err := stretch.BuildHistogram(img.PixelData, width, height, min, max,
		stretch.DisplayBuckets, img.Channels, order)
	if err != nil {
		return errorResult("histogram error: " + err.Error())
	}

	// Hand the raster to JS as a Uint8ClampedArray ready for ImageData
	jsRGBA := js.Global().Get("Uint8ClampedArray").New(len(rgba))
	js.CopyBytesToJS(jsRGBA, rgba)

	jsHist := make([]interface{}, len(hist))
	for i, c := range hist {
		jsHist[i] = int(c)
	}

	return js.ValueOf(map[string]interface{}{
		"rgba":      jsRGBA,
		"width":     width,
		"height":    height,
		"channels":  img.Channels,
		"histogram": jsHist,
		"min":       min,
		"max":       max,
	})
}

func parseOptions(opts js.Value) (stretch.StretchSettings, stretch.BayerPattern, stretch.SampleOrder) {
	settings := stretch.DefaultStretchSettings()
	pattern := stretch.PatternNone
	order := stretch.RowMajor

	if opts.Type() != js.TypeObject {
		return settings, pattern, order
	}
	if v := opts.Get("method"); v.Type() == js.TypeString {
		settings.Method = v.String()
	}
	if v := opts.Get("autostretch"); v.Type() == js.TypeBoolean {
		settings.AutoStretch = v.Bool()
	}
	if v := opts.Get("robuststretch"); v.Type() == js.TypeBoolean {
		settings.UseRobustStretch = v.Bool()
	}
	if v := opts.Get("robustpercentile"); v.Type() == js.TypeNumber {
		settings.RobustPercentile = v.Float()
	}
	if v := opts.Get("min"); v.Type() == js.TypeNumber {
		settings.MinPixelValue = v.Float()
	}
	if v := opts.Get("max"); v.Type() == js.TypeNumber {
		settings.MaxPixelValue = v.Float()
	}
	if v := opts.Get("bayerPattern"); v.Type() == js.TypeString {
		pattern = stretch.ParseBayerPattern(v.String())
	}
	if v := opts.Get("columnMajor"); v.Type() == js.TypeBoolean && v.Bool() {
		order = stretch.ColumnMajor
	}
	return settings, pattern, order
}

func copyBytes(jsBytes js.Value) []byte {
	length := jsBytes.Get("length").Int()
	buf := make([]byte, length)
	js.CopyBytesToGo(buf, jsBytes)
	return buf
}

func decodeUint16(raw []byte) []uint16 {
	out := make([]uint16, len(raw)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	return out
}

func decodeUint32(raw []byte) []uint32 {
	out := make([]uint32, len(raw)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out
}

// encodeSamples packs a sample slice back into little-endian bytes at the
// sample's bit width.
func encodeSamples[T stretch.Sample](samples []T) []byte {
	switch s := any(samples).(type) {
	case []uint8:
		return s
	case []uint16:
		out := make([]byte, len(s)*2)
		for i, v := range s {
			binary.LittleEndian.PutUint16(out[i*2:], v)
		}
		return out
	case []uint32:
		out := make([]byte, len(s)*4)
		for i, v := range s {
			binary.LittleEndian.PutUint32(out[i*4:], v)
		}
		return out
	default:
		return nil
	}
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}
