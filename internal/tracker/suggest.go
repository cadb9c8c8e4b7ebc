package tracker

import "github.com/kapu/badminton-tracker-go/internal/domain"

// SuggestedMatchCount returns the minimum number of matches so that every
// one of playerCount players appears in at least one roster slot, assuming
// perfect packing (no player doubled up before all have played once).
// Advisory only; generation may distribute differently through its random
// tie-breaks. Returns 0 below the roster requirement.
func SuggestedMatchCount(playerCount int, matchType domain.MatchType) int {
	if playerCount < 2 {
		return 0
	}
	if matchType == domain.Doubles {
		if playerCount < 4 {
			return 0
		}
		return (playerCount + 3) / 4
	}
	return (playerCount + 1) / 2
}
