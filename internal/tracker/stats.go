package tracker

import "sort"

// PlayerStats aggregates win/loss/win-rate for one player from the recorded
// match log, globally and scoped to the active session. Pure read; matches
// without a winner are ignored.
func (m *Manager) PlayerStats(playerID string) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerStatsLocked(playerID)
}

func (m *Manager) playerStatsLocked(playerID string) Stats {
	sess := m.findSession(m.current)

	var st Stats
	for i := range m.matches {
		match := &m.matches[i]
		if !match.Recorded() {
			continue
		}
		team := match.TeamOf(playerID)
		if team == 0 {
			continue
		}
		won := team == match.WinnerTeam
		if won {
			st.TotalWins++
		} else {
			st.TotalLosses++
		}
		if sess != nil && sess.HasMatch(match.ID) {
			if won {
				st.SessionWins++
			} else {
				st.SessionLosses++
			}
		}
	}
	st.WinRate = rate(st.TotalWins, st.TotalLosses)
	st.SessionWinRate = rate(st.SessionWins, st.SessionLosses)
	return st
}

// rate is wins/(wins+losses) as a percentage, 0 for an empty record —
// never NaN.
func rate(wins, losses int) float64 {
	total := wins + losses
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// Rankings returns every player with their stats, ordered by descending win
// rate, ties by descending win count, remaining ties in roster order.
func (m *Manager) Rankings() []RankedPlayer {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RankedPlayer, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, RankedPlayer{Player: p, Stats: m.playerStatsLocked(p.ID)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].TotalWins > out[j].TotalWins
	})
	return out
}
