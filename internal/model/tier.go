package model

// Tier is the status bucket derived from a record's quality score.
type Tier string

const (
	TierExcellent    Tier = "excellent"    // score >= 9.0
	TierGood         Tier = "good"         // 7.0 <= score < 9.0
	TierFair         Tier = "fair"         // 5.0 <= score < 7.0
	TierInsufficient Tier = "insufficient" // score < 5.0
)

// AllTiers lists the status tiers from best to worst.
var AllTiers = []Tier{TierExcellent, TierGood, TierFair, TierInsufficient}

// TierForScore maps a quality score to its status tier. The buckets are
// closed, ordered and non-overlapping, so every score maps to exactly one tier.
func TierForScore(score float64) Tier {
	switch {
	case score >= 9.0:
		return TierExcellent
	case score >= 7.0:
		return TierGood
	case score >= 5.0:
		return TierFair
	default:
		return TierInsufficient
	}
}

// ParseTier returns the tier matching s, or false for unknown labels.
func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierExcellent, TierGood, TierFair, TierInsufficient:
		return Tier(s), true
	}
	return "", false
}
