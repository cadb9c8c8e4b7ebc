package store

import (
	"context"
	"errors"

	"github.com/kapu/badminton-tracker-go/internal/domain"
)

// ErrCapacityExceeded is the single save failure mode the tracker is prepared
// for: the backend refused the write for lack of space. In-memory state stays
// authoritative until the next successful save.
var ErrCapacityExceeded = errors.New("storage capacity exceeded")

// Store persists the tracker's four logical records plus the per-session
// match-number counter, each as an independent blob. Load methods return the
// zero value (nil slice, empty string, 0) when a record has never been
// written.
type Store interface {
	LoadPlayers(ctx context.Context) ([]domain.Player, error)
	SavePlayers(ctx context.Context, players []domain.Player) error

	LoadMatches(ctx context.Context) ([]domain.Match, error)
	SaveMatches(ctx context.Context, matches []domain.Match) error

	LoadSessions(ctx context.Context) ([]domain.Session, error)
	SaveSessions(ctx context.Context, sessions []domain.Session) error

	LoadCurrentSessionID(ctx context.Context) (string, error)
	SaveCurrentSessionID(ctx context.Context, id string) error

	LoadMatchCounter(ctx context.Context) (int, error)
	SaveMatchCounter(ctx context.Context, n int) error
}
