package framestretch

import (
	"fmt"
	"math"
)

// FrameStatistics holds histogram-derived frame statistics in raw sample
// units.
type FrameStatistics struct {
	Median float64
	MAD    float64
	Mean   float64
	StdDev float64
}

func (s FrameStatistics) String() string {
	return fmt.Sprintf("{Median=%f, MAD=%f, Mean=%f, StdDev=%f}", s.Median, s.MAD, s.Mean, s.StdDev)
}

// madToSigma converts a median absolute deviation to a standard-deviation
// equivalent for normally distributed noise.
const madToSigma = 1.4826

// shadowsClipping is how many sigma-equivalents below the median the
// auto-stretch black point sits.
const shadowsClipping = 2.8

// ComputeStatistics derives median, MAD, mean and standard deviation from a
// full-depth histogram of the buffer, avoiding a per-pixel sort. 32-bit
// samples share the 16-bit bucket resolution (each bucket spans 2^16 raw
// values); the returned values stay in raw sample units.
func ComputeStatistics[T Sample](pix []T, bitsPerPixel int) (FrameStatistics, error) {
	var result FrameStatistics

	numBuckets, err := LUTSize(bitsPerPixel)
	if err != nil {
		return result, err
	}
	if len(pix) == 0 {
		return result, nil
	}

	// Bucket i covers raw values [i*bucketWidth, (i+1)*bucketWidth).
	bucketWidth := 1
	if bitsPerPixel == 32 {
		bucketWidth = 1 << 16
	}
	shift := uint(0)
	if bitsPerPixel == 32 {
		shift = 16
	}

	histogram := make([]uint32, numBuckets)
	for _, v := range pix {
		idx := int(uint64(v) >> shift)
		if idx >= numBuckets {
			idx = numBuckets - 1
		}
		histogram[idx]++
	}
	numPixels := int64(len(pix))

	// Median: walk the cumulative histogram, interpolating inside the
	// bucket that crosses the halfway count.
	targetCount := float64(numPixels) / 2
	var cumulative uint32
	medianBucket := 0
	for i := 0; i < numBuckets; i++ {
		cumulative += histogram[i]
		if float64(cumulative) >= targetCount {
			ratio := (float64(cumulative) - targetCount) / float64(histogram[i])
			result.Median = float64(i)*float64(bucketWidth) + float64(bucketWidth)*ratio
			medianBucket = i
			break
		}
	}

	// MAD: expand outward from the median bucket, always consuming the
	// bucket whose lower bound is closest to the median, until half the
	// pixels are covered.
	upIndex := medianBucket
	downIndex := medianBucket - 1
	cumulative = 0
	for {
		upDist := math.MaxFloat64
		if upIndex < numBuckets {
			upDist = math.Abs(float64(upIndex)*float64(bucketWidth) - result.Median)
		}
		downDist := math.MaxFloat64
		if downIndex >= 0 {
			downDist = math.Abs(float64(downIndex)*float64(bucketWidth) - result.Median)
		}
		var chosen int
		if upDist <= downDist {
			chosen = upIndex
			upIndex++
		} else {
			chosen = downIndex
			downIndex--
		}
		cumulative += histogram[chosen]
		if float64(cumulative) >= targetCount {
			result.MAD = math.Abs(float64(chosen)*float64(bucketWidth) - result.Median)
			break
		}
		if upIndex >= numBuckets && downIndex < 0 {
			break
		}
	}

	var total float64
	for i, count := range histogram {
		total += float64(count) * float64(i) * float64(bucketWidth)
	}
	result.Mean = total / float64(numPixels)

	if numPixels > 1 {
		var sse float64
		for i, count := range histogram {
			err := float64(i)*float64(bucketWidth) - result.Mean
			sse += float64(count) * err * err
		}
		result.StdDev = math.Sqrt(sse / float64(numPixels-1))
	}

	return result, nil
}

// AutoStretchBounds derives display black/white points from frame
// statistics: the black point sits shadowsClipping sigma-equivalents below
// the median (clamped to the observed minimum) and the white point is the
// observed maximum, so faint nebulosity just above the noise floor stays
// visible while the background clips to black.
func AutoStretchBounds(stats FrameStatistics, observedMin, observedMax float64) (float64, float64) {
	black := stats.Median - shadowsClipping*madToSigma*stats.MAD
	if black < observedMin {
		black = observedMin
	}
	white := observedMax
	if white < black {
		black, white = white, black
	}
	return black, white
}
