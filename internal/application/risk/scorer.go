// Package risk scores transfers for fraud review. The model is deliberately
// additive and threshold-based: cheap to evaluate inline and auditable after
// the fact, since the score and flag are persisted with every ledger entry.
package risk

import "time"

const (
	// HighValueThreshold is the amount (minor units) above which a transfer
	// picks up HighValueScore points.
	HighValueThreshold int64 = 10000
	HighValueScore           = 50

	// FrequencyWindow and FrequencyMax bound normal sending cadence: more
	// than FrequencyMax prior transfers inside the window adds FrequencyScore.
	FrequencyWindow = 10 * time.Minute
	FrequencyMax    = 5
	FrequencyScore  = 60

	// FlagThreshold is the review threshold: scores at or above it are flagged.
	FlagThreshold = 100
)

// Score computes the risk score for a transfer of the given amount where the
// sender has recentCount prior transfers inside FrequencyWindow.
func Score(amount int64, recentCount int) (score int, flagged bool) {
	if amount > HighValueThreshold {
		score += HighValueScore
	}
	if recentCount > FrequencyMax {
		score += FrequencyScore
	}
	return score, score >= FlagThreshold
}
