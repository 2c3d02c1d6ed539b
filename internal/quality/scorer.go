// Package quality rates how well a consensus record is covered by its source
// reports: how many estimate figures are populated, how many analysts stand
// behind them, and how many reports agree. The score is a weighted coverage
// sum on a 0..10 scale; the weighting is policy, the tier boundaries are not.
package quality

import (
	"math"

	"github.com/hsuancheng/factset-consensus/internal/model"
)

// Scorer computes record quality scores under a fixed policy.
type Scorer struct {
	policy   Policy
	possible int // total figures a fully populated record would carry
}

// NewScorer creates a scorer. possibleFigures is the completeness denominator:
// every estimate figure across the export's calendar years plus the target
// price. It is fixed per run so that populating more figures can only raise
// the score.
func NewScorer(policy Policy, possibleFigures int) *Scorer {
	return &Scorer{
		policy:   policy,
		possible: possibleFigures,
	}
}

// Score rates a record's coverage and classifies it into a status tier.
// Monotonic non-decreasing in all three inputs; the result is rounded to one
// decimal (the export's precision) and always lies in [0.0, 10.0].
func (s *Scorer) Score(populatedFigures, analystCount, reportCount int) (float64, model.Tier) {
	completeness := saturate(populatedFigures, s.possible)
	analysts := saturate(analystCount, s.policy.Saturation.FullAnalysts)
	reports := saturate(reportCount, s.policy.Saturation.FullReports)

	w := s.policy.Weights
	score := 10 * (w.Completeness*completeness + w.Analysts*analysts + w.Reports*reports)

	score = math.Round(score*10) / 10
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	return score, model.TierForScore(score)
}

// saturate maps count onto [0, 1], earning full marks at full and above.
func saturate(count, full int) float64 {
	if full <= 0 || count <= 0 {
		return 0
	}
	if count >= full {
		return 1
	}
	return float64(count) / float64(full)
}
