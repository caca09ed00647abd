package intel

import "math"

// Confidence model weights. The turn-count base saturates below
// turnBaseCeiling so engagement length alone can never reach 1.0; each
// additional identifier class contributes a diminishing boost; a high
// sophistication verdict adds a final fixed boost. All contributions are
// monotone non-decreasing in session state.
const (
	turnBaseCeiling = 0.45
	turnBaseRate    = 6.0
	highSophBoost   = 0.12
)

// classBoosts[k] is the boost for the (k+1)-th distinct identifier class
// present. Diminishing so a single class cannot saturate confidence.
var classBoosts = [...]float64{0.18, 0.14, 0.10, 0.07, 0.05}

// Score computes the engagement confidence in [0, 1] from the current
// session state: turn count, extraction richness and the latest
// classification. It is a pure function; identical state always yields an
// identical score.
func Score(turnCount int, cum *Intelligence, cls Classification) float64 {
	if turnCount < 0 {
		turnCount = 0
	}

	score := turnBaseCeiling * (1 - math.Exp(-float64(turnCount)/turnBaseRate))

	classes := cum.IdentifierClassCount()
	if classes > len(classBoosts) {
		classes = len(classBoosts)
	}
	for k := 0; k < classes; k++ {
		score += classBoosts[k]
	}

	if cls.Sophistication == SophisticationHigh {
		score += highSophBoost
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
