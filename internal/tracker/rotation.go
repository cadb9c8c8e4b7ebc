package tracker

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/badminton-tracker-go/internal/domain"
	"github.com/kapu/badminton-tracker-go/internal/obslog"
)

// GenerateMatches appends count drafts to the pending queue for the active
// session. The equal-rotation strategy picks the least-played players; with
// useSkill the skill balancer picks from the players within one game of the
// minimum count. The pool size is checked up front so a failed request never
// partially fills the queue.
func (m *Manager) GenerateMatches(ctx context.Context, matchType domain.MatchType, count int, useSkill bool) ([]domain.Match, error) {
	if !matchType.Valid() {
		return nil, ErrInvalidMatchType
	}
	if count < 1 {
		count = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.findSession(m.current)
	if sess == nil || !sess.IsActive {
		return nil, ErrNoActiveSession
	}
	sessionPlayers := make([]domain.Player, 0, len(sess.PlayerIDs))
	for _, id := range sess.PlayerIDs {
		if p := m.findPlayer(id); p != nil {
			sessionPlayers = append(sessionPlayers, *p)
		}
	}
	if len(sessionPlayers) < matchType.PlayersPerMatch() {
		return nil, ErrInsufficientPlayers
	}

	var made []domain.Match
	if useSkill {
		// Candidate pool is fixed for the whole batch: players within one
		// game of the minimum count, so nobody lags behind for the sake of
		// a skill pairing.
		candidates := eligibleBySkillPool(sessionPlayers, m.gameCountsLocked(sess))
		for i := 0; i < count; i++ {
			draft, ok := m.skillDraftLocked(candidates, matchType)
			if !ok {
				break
			}
			m.queue = append(m.queue, draft)
			made = append(made, cloneMatch(&draft))
		}
	} else {
		for i := 0; i < count; i++ {
			draft := m.rotationDraftLocked(sessionPlayers, matchType, sess)
			m.queue = append(m.queue, draft)
			made = append(made, cloneMatch(&draft))
		}
	}

	err := m.persistCounter(ctx)
	obslog.L().Info("matches_generate",
		zap.String("session_id", sess.ID),
		zap.String("match_type", string(matchType)),
		zap.Int("requested", count),
		zap.Int("queued", len(made)),
		zap.Bool("skill", useSkill),
	)
	return made, err
}

// GameCounts returns per-player appearance counts for the active session:
// recorded session matches plus the pending queue. Empty when no session is
// active.
func (m *Manager) GameCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.findSession(m.current)
	if sess == nil {
		return map[string]int{}
	}
	return m.gameCountsLocked(sess)
}

func (m *Manager) gameCountsLocked(sess *domain.Session) map[string]int {
	counts := make(map[string]int, len(sess.PlayerIDs))
	for _, id := range sess.PlayerIDs {
		counts[id] = 0
	}
	for i := range m.matches {
		if !sess.HasMatch(m.matches[i].ID) {
			continue
		}
		tally(counts, &m.matches[i])
	}
	for i := range m.queue {
		tally(counts, &m.queue[i])
	}
	return counts
}

func tally(counts map[string]int, match *domain.Match) {
	for _, id := range match.Team1 {
		counts[id]++
	}
	for _, id := range match.Team2 {
		counts[id]++
	}
}

// rotationDraftLocked selects the least-played players. Counts are recomputed
// per draft so a batch sees the players already consumed by earlier drafts.
// Ties are broken by shuffling before a stable sort, not by a random
// comparator: every tied player is equally likely to go first and the order
// is well defined.
func (m *Manager) rotationDraftLocked(players []domain.Player, matchType domain.MatchType, sess *domain.Session) domain.Match {
	counts := m.gameCountsLocked(sess)
	pool := make([]domain.Player, len(players))
	copy(pool, players)
	m.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	sort.SliceStable(pool, func(i, j int) bool {
		return counts[pool[i].ID] < counts[pool[j].ID]
	})

	m.matchNo++
	draft := domain.Match{
		ID:          uuid.NewString(),
		Type:        matchType,
		MatchNumber: m.matchNo,
	}
	if matchType == domain.Singles {
		draft.Team1 = []string{pool[0].ID}
		draft.Team2 = []string{pool[1].ID}
		return draft
	}
	// Doubles: the four least-played players, team split at random. No
	// seeding here; skill only matters to the skill balancer.
	four := pool[:4]
	m.rng.Shuffle(len(four), func(i, j int) { four[i], four[j] = four[j], four[i] })
	draft.Team1 = []string{four[0].ID, four[1].ID}
	draft.Team2 = []string{four[2].ID, four[3].ID}
	return draft
}

