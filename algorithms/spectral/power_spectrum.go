package spectral

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-vitals/algorithms/common"
)

// PowerSpectrum computes the one-sided power spectrum of a short series,
// such as per-segment speech rates ordered in time.
type PowerSpectrum struct {
	fft *FFT
}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{fft: NewFFT()}
}

// Compute removes the mean from series and returns |X[k]|² for
// k = 1..n/2. The DC bin is dropped because it only carries the mean.
func (ps *PowerSpectrum) Compute(series []float64) []float64 {
	n := len(series)
	if n < 2 {
		return []float64{}
	}

	mean := common.Mean(series)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	spectrum := ps.fft.Compute(centered)
	half := n / 2
	power := make([]float64, 0, half)
	for k := 1; k <= half; k++ {
		mag := cmplx.Abs(spectrum[k])
		power = append(power, mag*mag)
	}

	return power
}

// TotalPower sums a power spectrum
func TotalPower(power []float64) float64 {
	return common.Sum(power)
}
