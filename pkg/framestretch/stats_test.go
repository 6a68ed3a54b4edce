package framestretch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatisticsUniform(t *testing.T) {
	pix := make([]uint16, 100)
	for i := range pix {
		pix[i] = 1000
	}
	stats, err := ComputeStatistics(pix, 16)
	require.NoError(t, err)

	// The median interpolates to the middle of the single occupied bucket.
	assert.InDelta(t, 1000.5, stats.Median, 1e-9)
	assert.InDelta(t, 0.5, stats.MAD, 1e-9)
	assert.InDelta(t, 1000.0, stats.Mean, 1e-9)
	assert.InDelta(t, 0.0, stats.StdDev, 1e-9)
}

func TestComputeStatisticsBimodal(t *testing.T) {
	pix := make([]uint16, 100)
	for i := range pix {
		if i < 50 {
			pix[i] = 1000
		} else {
			pix[i] = 2000
		}
	}
	stats, err := ComputeStatistics(pix, 16)
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, stats.Median, 1e-9)
	assert.InDelta(t, 1500.0, stats.Mean, 1e-9)
	assert.InDelta(t, 502.5, stats.StdDev, 0.1)
}

func TestComputeStatistics32BitBucketResolution(t *testing.T) {
	// 32-bit samples share the 16-bit bucket count, so each bucket spans
	// 2^16 raw units and the median is only accurate to that width.
	pix := make([]uint32, 10)
	for i := range pix {
		pix[i] = 1 << 20
	}
	stats, err := ComputeStatistics(pix, 32)
	require.NoError(t, err)

	assert.InDelta(t, float64(1<<20), stats.Median, float64(1<<16))
	assert.InDelta(t, float64(1<<20), stats.Mean, 1e-9)
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats, err := ComputeStatistics([]uint16{}, 16)
	require.NoError(t, err)
	assert.Equal(t, FrameStatistics{}, stats)
}

func TestComputeStatisticsBadBitDepth(t *testing.T) {
	_, err := ComputeStatistics([]uint16{1}, 12)
	assert.Error(t, err)
}

func TestAutoStretchBounds(t *testing.T) {
	stats := FrameStatistics{Median: 1000, MAD: 10}
	black, white := AutoStretchBounds(stats, 0, 50000)
	assert.InDelta(t, 1000-2.8*1.4826*10, black, 1e-9)
	assert.Equal(t, 50000.0, white)
}

func TestAutoStretchBoundsClampsToObservedMin(t *testing.T) {
	stats := FrameStatistics{Median: 1000, MAD: 100}
	black, white := AutoStretchBounds(stats, 980, 50000)
	assert.Equal(t, 980.0, black)
	assert.Equal(t, 50000.0, white)
}

func TestAutoStretchBoundsNeverInverted(t *testing.T) {
	stats := FrameStatistics{Median: 100, MAD: 0}
	black, white := AutoStretchBounds(stats, 60, 50)
	assert.LessOrEqual(t, black, white)
}
