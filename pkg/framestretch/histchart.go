package framestretch

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderHistogramChart draws the histogram as a bar chart for the stretch
// UI: bars normalized to the peak bucket, optionally on a log count scale
// so sparse highlights stay visible next to a dominant background peak.
func RenderHistogramChart(hist []uint32, width, height int, logScale bool) *image.RGBA {
	if width < 64 {
		width = 64
	}
	if height < 48 {
		height = 48
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Black background
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}

	var peak uint32
	for _, c := range hist {
		if c > peak {
			peak = c
		}
	}

	// Reserve a label strip at the top
	labelH := 16
	plotH := height - labelH

	if peak > 0 && len(hist) > 0 {
		barColor := color.RGBA{180, 180, 180, 255}
		logPeak := math.Log1p(float64(peak))
		for x := 0; x < width; x++ {
			bucket := x * len(hist) / width
			c := hist[bucket]
			if c == 0 {
				continue
			}
			var frac float64
			if logScale {
				frac = math.Log1p(float64(c)) / logPeak
			} else {
				frac = float64(c) / float64(peak)
			}
			barTop := labelH + plotH - int(frac*float64(plotH))
			for y := barTop; y < height; y++ {
				img.Set(x, y, barColor)
			}
		}
	}

	// Baseline
	axisColor := color.RGBA{255, 255, 255, 180}
	for x := 0; x < width; x++ {
		img.Set(x, height-1, axisColor)
	}

	face := basicfont.Face7x13
	labelColor := color.RGBA{220, 220, 220, 255}
	drawChartText(img, face, fmt.Sprintf("peak %d", peak), 4, 12, labelColor)

	return img
}

// drawChartText draws a string at (x, y) using the given font face.
func drawChartText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
