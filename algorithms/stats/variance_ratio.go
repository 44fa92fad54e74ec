package stats

import (
	"github.com/RyanBlaney/sonido-vitals/algorithms/common"
	"gonum.org/v1/gonum/stat/distuv"
)

// VarianceRatioTest is a one-way between/within group variance comparison
type VarianceRatioTest struct {
	FRatio      float64 `json:"f_ratio"`
	PValue      float64 `json:"p_value"`       // Banded approximation, drives Significant
	ExactPValue float64 `json:"exact_p_value"` // Upper tail of F(k-1, N-k)
	Groups      int     `json:"groups"`
	DFBetween   int     `json:"df_between"`
	DFWithin    int     `json:"df_within"`
	Significant bool    `json:"significant"`
}

// BandedPValue maps a variance ratio onto the coarse bands
// F > 2.5 → 0.01, F > 2.0 → 0.05, otherwise 0.20.
func BandedPValue(f float64) float64 {
	switch {
	case f > 2.5:
		return 0.01
	case f > 2.0:
		return 0.05
	default:
		return 0.20
	}
}

// OneWayVarianceRatio computes MS_between / MS_within across the non-empty
// groups. Fewer than two groups, no within-group degrees of freedom or zero
// within-group variance give F = 0. A perfectly separated grouping (identical
// values within each group, different means) therefore reads as not
// significant.
func OneWayVarianceRatio(groups [][]float64) VarianceRatioTest {
	var nonEmpty [][]float64
	var all []float64
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		nonEmpty = append(nonEmpty, g)
		all = append(all, g...)
	}

	k := len(nonEmpty)
	n := len(all)
	result := VarianceRatioTest{
		Groups:      k,
		ExactPValue: 1.0,
	}

	if k < 2 || n-k < 1 {
		result.PValue = BandedPValue(0)
		return result
	}

	grand := common.Mean(all)
	ssBetween := 0.0
	ssWithin := 0.0
	for _, g := range nonEmpty {
		m := common.Mean(g)
		ssBetween += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssWithin += (v - m) * (v - m)
		}
	}

	result.DFBetween = k - 1
	result.DFWithin = n - k

	msWithin := ssWithin / float64(result.DFWithin)
	if msWithin > 1e-12 {
		result.FRatio = (ssBetween / float64(result.DFBetween)) / msWithin
		dist := distuv.F{D1: float64(result.DFBetween), D2: float64(result.DFWithin)}
		result.ExactPValue = common.Clamp(dist.Survival(result.FRatio), 0, 1)
	}

	result.PValue = BandedPValue(result.FRatio)
	result.Significant = result.PValue < SignificanceAlpha
	return result
}
