package domain

import "time"

// MatchType selects the roster size of a match.
type MatchType string

const (
	Singles MatchType = "singles"
	Doubles MatchType = "doubles"
)

// Valid reports whether t is a known match type.
func (t MatchType) Valid() bool { return t == Singles || t == Doubles }

// TeamSize returns the roster size of one side.
func (t MatchType) TeamSize() int {
	if t == Doubles {
		return 2
	}
	return 1
}

// PlayersPerMatch returns the total roster slots across both teams.
func (t MatchType) PlayersPerMatch() int { return 2 * t.TeamSize() }

// Skill level bounds. Skill is an ordinal tag used only by skill-based
// match generation.
const (
	MinSkillLevel     = 1
	MaxSkillLevel     = 5
	DefaultSkillLevel = 3
)

// ClampSkillLevel forces lvl into the valid ordinal range.
func ClampSkillLevel(lvl int) int {
	if lvl < MinSkillLevel {
		return MinSkillLevel
	}
	if lvl > MaxSkillLevel {
		return MaxSkillLevel
	}
	return lvl
}

// Player is a tracked player. Avatar is an opaque encoded image blob and may
// be nil. A player removed from the roster still appears in historical match
// rosters by ID; lookups against history must tolerate a missing player.
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Avatar     []byte    `json:"avatar,omitempty"`
	SkillLevel int       `json:"skill_level"`
	CreatedAt  time.Time `json:"created_at"`
}

// Match is a pending draft or a recorded match. WinnerTeam is 0 while the
// match is still pending; Date is assigned when the result is recorded.
// MatchNumber is the per-session sequence assigned at generation time.
type Match struct {
	ID          string    `json:"id"`
	Type        MatchType `json:"match_type"`
	MatchNumber int       `json:"match_number,omitempty"`
	Team1       []string  `json:"team1_players"`
	Team2       []string  `json:"team2_players"`
	WinnerTeam  int       `json:"winner_team,omitempty"`
	Team1Score  *int      `json:"team1_score,omitempty"`
	Team2Score  *int      `json:"team2_score,omitempty"`
	Date        time.Time `json:"date,omitzero"`
}

// Recorded reports whether a winner has been assigned.
func (m *Match) Recorded() bool { return m.WinnerTeam == 1 || m.WinnerTeam == 2 }

// TeamOf returns 1 or 2 for a rostered player, 0 otherwise.
func (m *Match) TeamOf(playerID string) int {
	for _, id := range m.Team1 {
		if id == playerID {
			return 1
		}
	}
	for _, id := range m.Team2 {
		if id == playerID {
			return 2
		}
	}
	return 0
}

// HasPlayer reports whether playerID is on either roster.
func (m *Match) HasPlayer(playerID string) bool { return m.TeamOf(playerID) != 0 }

// Session is a bounded play window with a roster fixed at start. MatchIDs
// lists the recorded matches in order of recording. At most one session is
// active at a time.
type Session struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"start_date"`
	EndedAt   *time.Time `json:"end_date,omitempty"`
	IsActive  bool       `json:"is_active"`
	PlayerIDs []string   `json:"player_ids"`
	MatchIDs  []string   `json:"match_ids"`
}

// HasPlayer reports whether playerID is part of the session roster.
func (s *Session) HasPlayer(playerID string) bool {
	for _, id := range s.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// HasMatch reports whether matchID was recorded during the session.
func (s *Session) HasMatch(matchID string) bool {
	for _, id := range s.MatchIDs {
		if id == matchID {
			return true
		}
	}
	return false
}
