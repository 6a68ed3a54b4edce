package framestretch

import "fmt"

// DisplayBuckets is the histogram resolution the stretch-control UI renders.
const DisplayBuckets = 256

// BuildHistogram bins pixel values into a fixed number of buckets after
// windowing by [min,max]. Values outside the window clamp into the first
// and last bucket, so the counts always sum to width*height. For 3-channel
// data each pixel contributes its channel mean. A degenerate window
// (max <= min) puts every pixel in bucket 0.
//
// Counts are raw; normalizing bar heights to the peak is a presentation
// concern, see RenderHistogramChart.
func BuildHistogram[T Sample](pix []T, width, height int, min, max float64, buckets, channels int, order SampleOrder) ([]uint32, error) {
	if buckets <= 0 {
		return nil, fmt.Errorf("bucket count must be positive, got %d", buckets)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChannels, channels)
	}
	if err := checkBufferLen(pix, width, height, channels); err != nil {
		return nil, err
	}

	hist := make([]uint32, buckets)
	pixelCount := width * height

	if max <= min {
		hist[0] = uint32(pixelCount)
		return hist, nil
	}

	scale := float64(buckets) / (max - min)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v float64
			if channels == 3 {
				base := (y*width + x) * 3
				v = (float64(pix[base]) + float64(pix[base+1]) + float64(pix[base+2])) / 3
			} else if order == ColumnMajor {
				v = float64(pix[x*height+y])
			} else {
				v = float64(pix[y*width+x])
			}
			bucket := int((v - min) * scale)
			if bucket < 0 {
				bucket = 0
			}
			if bucket >= buckets {
				bucket = buckets - 1
			}
			hist[bucket]++
		}
	}
	return hist, nil
}
