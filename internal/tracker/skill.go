package tracker

import (
	"sort"

	"github.com/google/uuid"

	"github.com/kapu/badminton-tracker-go/internal/domain"
)

// eligibleBySkillPool restricts skill-based generation to players within one
// game of the minimum count, so the fairness rotation still dominates and
// skill only decides who meets whom.
func eligibleBySkillPool(players []domain.Player, counts map[string]int) []domain.Player {
	if len(players) == 0 {
		return nil
	}
	min := counts[players[0].ID]
	for _, p := range players[1:] {
		if c := counts[p.ID]; c < min {
			min = c
		}
	}
	out := make([]domain.Player, 0, len(players))
	for _, p := range players {
		if counts[p.ID] <= min+1 {
			out = append(out, p)
		}
	}
	return out
}

// skillDraftLocked builds one draft by skill level instead of game count.
// Singles pairs two players of similar skill; doubles balances team strength
// by pairing the strongest of the four lowest-skill candidates with the
// weakest. Returns false (no draft) when the pool is too small; the caller
// surfaces that as a no-op.
func (m *Manager) skillDraftLocked(candidates []domain.Player, matchType domain.MatchType) (domain.Match, bool) {
	if len(candidates) < matchType.PlayersPerMatch() {
		return domain.Match{}, false
	}
	pool := make([]domain.Player, len(candidates))
	copy(pool, candidates)
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].SkillLevel < pool[j].SkillLevel })

	m.matchNo++
	draft := domain.Match{
		ID:          uuid.NewString(),
		Type:        matchType,
		MatchNumber: m.matchNo,
	}

	if matchType == domain.Singles {
		// A 3-wide window around the median skill, then two at random from
		// it: similar skill, not always the exact same pairing.
		mid := len(pool) / 2
		lo, hi := mid-1, mid+2
		if lo < 0 {
			lo = 0
		}
		if hi > len(pool) {
			hi = len(pool)
		}
		window := make([]domain.Player, hi-lo)
		copy(window, pool[lo:hi])
		m.rng.Shuffle(len(window), func(i, j int) { window[i], window[j] = window[j], window[i] })
		draft.Team1 = []string{window[0].ID}
		draft.Team2 = []string{window[1].ID}
		return draft, true
	}

	// Doubles: ranks 1+4 vs 2+3 of the four lowest-skill candidates. This
	// equalizes team skill sums rather than stacking one side.
	four := pool[:4]
	draft.Team1 = []string{four[0].ID, four[3].ID}
	draft.Team2 = []string{four[1].ID, four[2].ID}
	return draft, true
}
