package tracker

import (
	"errors"

	"github.com/kapu/badminton-tracker-go/internal/domain"
)

var (
	ErrInvalidMatchType     = errors.New("unknown match type")
	ErrEmptyPlayerName      = errors.New("player name is required")
	ErrNoActiveSession      = errors.New("no active session")
	ErrTooFewSessionPlayers = errors.New("a session needs at least two players")
	ErrInsufficientPlayers  = errors.New("not enough players for match type")
	ErrInvalidWinner        = errors.New("winner team must be 1 or 2")
)

// Stats is a per-player aggregate over the recorded match log. Win rates are
// percentages in [0,100] and are 0 when no matches qualify.
type Stats struct {
	TotalWins      int     `json:"total_wins"`
	TotalLosses    int     `json:"total_losses"`
	WinRate        float64 `json:"win_rate"`
	SessionWins    int     `json:"session_wins"`
	SessionLosses  int     `json:"session_losses"`
	SessionWinRate float64 `json:"session_win_rate"`
}

// RankedPlayer pairs a player with their aggregate for ranking views.
type RankedPlayer struct {
	Player domain.Player `json:"player"`
	Stats
}
