package framestretch

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// lowerPercentile is the fixed lower bound quantile for robust black-point
// estimation. Rejecting the bottom 1% keeps dead pixels and readout noise
// from dominating the displayed contrast.
const lowerPercentile = 1.0

// EstimatePercentiles computes robust black/white display points by grid
// sampling the buffer instead of scanning it: the stride is chosen so the
// sample count stays roughly constant regardless of resolution, trading
// statistical precision for speed. For 3-channel data the per-sample
// luminance is the unweighted mean of R, G and B.
//
// upperPercentile is clamped to [80, 100]. The returned bounds always
// satisfy min <= max. A buffer with no usable samples yields the full
// representable range for the sample type; callers must treat that as "no
// usable signal", not as an error.
func EstimatePercentiles[T Sample](buf []T, width, height int, upperPercentile float64, order SampleOrder, channels int) (float64, float64) {
	pixelCount := width * height
	if pixelCount <= 0 || len(buf) < pixelCount*channels || (channels != 1 && channels != 3) {
		return defaultRange[T]()
	}

	if upperPercentile < 80 {
		upperPercentile = 80
	}
	if upperPercentile > 100 {
		upperPercentile = 100
	}

	stride := int(math.Floor(math.Sqrt(float64(pixelCount) / 10)))
	if stride < 1 {
		stride = 1
	}

	samples := make([]float64, 0, pixelCount/(stride*stride)+16)
	for y := 0; y < height; y += stride {
		for x := 0; x < width; x += stride {
			var v float64
			if channels == 3 {
				// Demosaiced RGB is always row-major interleaved.
				base := (y*width + x) * 3
				v = (float64(buf[base]) + float64(buf[base+1]) + float64(buf[base+2])) / 3
			} else if order == ColumnMajor {
				v = float64(buf[x*height+y])
			} else {
				v = float64(buf[y*width+x])
			}
			samples = append(samples, v)
		}
	}

	if len(samples) == 0 {
		return defaultRange[T]()
	}

	sort.Float64s(samples)
	robustMin := stat.Quantile(lowerPercentile/100, stat.Empirical, samples, nil)
	robustMax := stat.Quantile(upperPercentile/100, stat.Empirical, samples, nil)
	if robustMax < robustMin {
		robustMin, robustMax = robustMax, robustMin
	}
	return robustMin, robustMax
}
