package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	stretch "framestretch/pkg/framestretch"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fset := flag.NewFlagSet("framestretch", flag.ContinueOnError)
	settingsPath := fset.String("settings", "", "YAML stretch settings file")
	method := fset.String("method", "", "stretch method: none, linear or log")
	percentile := fset.Float64("percentile", 98, "robust upper percentile (80-100)")
	manualMin := fset.Float64("min", 0, "manual black point (disables auto-stretch with -max)")
	manualMax := fset.Float64("max", 0, "manual white point (disables auto-stretch with -min)")
	bayer := fset.String("bayer", "", "override Bayer pattern: RGGB, GRBG, GBRG, BGGR or none")
	outPath := fset.String("out", "stretched.png", "output PNG path")
	histPath := fset.String("hist", "", "optional histogram chart PNG path")
	thumbWidth := fset.Uint("thumb", 0, "downscale output to at most this width")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() < 1 {
		return fmt.Errorf("usage: framestretch [flags] <input-file>")
	}
	inputFilePath := fset.Arg(0)

	settings := stretch.DefaultStretchSettings()
	if *settingsPath != "" {
		var err error
		settings, err = stretch.LoadStretchSettings(*settingsPath)
		if err != nil {
			return err
		}
	}

	changed := map[string]bool{}
	fset.Visit(func(f *flag.Flag) { changed[f.Name] = true })
	if changed["method"] {
		settings.Method = *method
	}
	if changed["percentile"] {
		settings.RobustPercentile = *percentile
	}
	if changed["min"] || changed["max"] {
		settings.AutoStretch = false
		settings.MinPixelValue = *manualMin
		settings.MaxPixelValue = *manualMax
	}
	if err := settings.Finalize(); err != nil {
		return err
	}

	fmt.Printf("Loading: %s\n", inputFilePath)
	frame, err := loadFrame(inputFilePath)
	if err != nil {
		return err
	}
	if changed["bayer"] {
		frame.Pattern = stretch.ParseBayerPattern(*bayer)
	}
	fmt.Printf("Frame loaded: %dx%d, %d-bit, pattern %s\n",
		frame.Width, frame.Height, frame.BitDepth, frame.Pattern)

	startTime := time.Now()
	renderer := stretch.NewRenderer(settings)
	display, err := renderer.Render(frame)
	if err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	if display == nil {
		return fmt.Errorf("frame has no pixels")
	}
	elapsed := time.Since(startTime)

	img, err := stretch.ToRGBAImage(display.RGBA, display.Width, display.Height)
	if err != nil {
		return err
	}
	if err := stretch.WritePNG(*outPath, stretch.Thumbnail(img, *thumbWidth)); err != nil {
		return err
	}

	if *histPath != "" {
		chart := stretch.RenderHistogramChart(display.Histogram, 512, 160, true)
		if err := stretch.WritePNG(*histPath, chart); err != nil {
			return err
		}
	}

	stats, err := stretch.ComputeStatistics(frame.Pixels, frame.BitDepth)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("=== Frame Render Results (%.2fs) ===\n", elapsed.Seconds())
	fmt.Printf("  Image size:      %d x %d (%d channel)\n", display.Width, display.Height, display.Channels)
	fmt.Printf("  Display bounds:  [%.1f, %.1f] (%s)\n", display.Min, display.Max, settings.Method)
	fmt.Printf("  Median:          %.1f +/- %.1f (MAD)\n", stats.Median, stats.MAD)
	fmt.Printf("  Mean:            %.1f +/- %.1f\n", stats.Mean, stats.StdDev)
	fmt.Printf("  Output:          %s\n", *outPath)
	fmt.Println("==============================")

	return nil
}

// loadFrame routes FITS files to the FITS reader and everything else to
// the build-dependent image loader.
func loadFrame(path string) (*stretch.RawFrame, error) {
	lowerPath := strings.ToLower(path)
	if strings.HasSuffix(lowerPath, ".fits") || strings.HasSuffix(lowerPath, ".fit") {
		frame, err := stretch.ReadFrame(path)
		if err != nil {
			return nil, fmt.Errorf("reading FITS: %w", err)
		}
		return frame, nil
	}
	return loadNonFitsFrame(path)
}
