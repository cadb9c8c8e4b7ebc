package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kapu/badminton-tracker-go/internal/domain"
)

// memstore is a development and test implementation used when no Redis is
// configured. Records go through a JSON round-trip so callers cannot alias
// stored state, same as the Redis path.
type memstore struct {
	mu sync.RWMutex

	players  []byte
	matches  []byte
	sessions []byte
	current  string
	counter  int
}

func NewMemory() Store { return &memstore{} }

func (m *memstore) LoadPlayers(ctx context.Context) ([]domain.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Player
	if err := unmarshalBlob(m.players, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *memstore) SavePlayers(ctx context.Context, players []domain.Player) error {
	raw, err := json.Marshal(players)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.players = raw
	m.mu.Unlock()
	return nil
}

func (m *memstore) LoadMatches(ctx context.Context) ([]domain.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Match
	if err := unmarshalBlob(m.matches, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *memstore) SaveMatches(ctx context.Context, matches []domain.Match) error {
	raw, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.matches = raw
	m.mu.Unlock()
	return nil
}

func (m *memstore) LoadSessions(ctx context.Context) ([]domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Session
	if err := unmarshalBlob(m.sessions, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *memstore) SaveSessions(ctx context.Context, sessions []domain.Session) error {
	raw, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions = raw
	m.mu.Unlock()
	return nil
}

func (m *memstore) LoadCurrentSessionID(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

func (m *memstore) SaveCurrentSessionID(ctx context.Context, id string) error {
	m.mu.Lock()
	m.current = id
	m.mu.Unlock()
	return nil
}

func (m *memstore) LoadMatchCounter(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counter, nil
}

func (m *memstore) SaveMatchCounter(ctx context.Context, n int) error {
	m.mu.Lock()
	m.counter = n
	m.mu.Unlock()
	return nil
}

func unmarshalBlob(raw []byte, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
