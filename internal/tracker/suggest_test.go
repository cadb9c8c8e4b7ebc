package tracker

import (
	"testing"

	"github.com/kapu/badminton-tracker-go/internal/domain"
)

func TestSuggestedMatchCount(t *testing.T) {
	cases := []struct {
		players   int
		matchType domain.MatchType
		want      int
	}{
		{0, domain.Singles, 0},
		{1, domain.Singles, 0},
		{2, domain.Singles, 1},
		{3, domain.Singles, 2},
		{7, domain.Singles, 4},
		{8, domain.Singles, 4},
		{2, domain.Doubles, 0},
		{3, domain.Doubles, 0},
		{4, domain.Doubles, 1},
		{5, domain.Doubles, 2},
		{8, domain.Doubles, 2},
		{9, domain.Doubles, 3},
	}
	for _, tc := range cases {
		if got := SuggestedMatchCount(tc.players, tc.matchType); got != tc.want {
			t.Fatalf("SuggestedMatchCount(%d, %s) = %d, want %d", tc.players, tc.matchType, got, tc.want)
		}
	}
}
