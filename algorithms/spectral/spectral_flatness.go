package spectral

import (
	"math"
)

// SpectralFlatness computes spectral flatness (Wiener entropy).
// Periodic series concentrate power in few bins and score low;
// irregular, noise-like series score close to 1.
type SpectralFlatness struct {
	minThreshold float64 // Minimum value to avoid log(0)
}

// NewSpectralFlatness creates a new spectral flatness calculator
func NewSpectralFlatness() *SpectralFlatness {
	return &SpectralFlatness{
		minThreshold: 1e-10,
	}
}

// Compute returns geometric mean / arithmetic mean of spectrum (0-1).
// Bins below the threshold are floored so a single dominant bin pulls the
// geometric mean, and with it the flatness, toward zero.
func (sf *SpectralFlatness) Compute(spectrum []float64) float64 {
	if len(spectrum) == 0 {
		return 0.0
	}

	logSum := 0.0
	arithmeticMean := 0.0
	for _, v := range spectrum {
		if v < sf.minThreshold {
			v = sf.minThreshold
		}
		logSum += math.Log(v)
		arithmeticMean += v
	}
	arithmeticMean /= float64(len(spectrum))

	if arithmeticMean <= sf.minThreshold {
		return 0.0
	}

	flatness := math.Exp(logSum/float64(len(spectrum))) / arithmeticMean
	if flatness > 1.0 {
		flatness = 1.0
	}

	return flatness
}
