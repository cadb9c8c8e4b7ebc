package tracker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/badminton-tracker-go/internal/obslog"
)

// undoEntry is the inverse of the last destructive action: a closure that
// re-inserts the captured snapshot into manager state. Only one entry is
// kept and it expires after the undo window; the buffer sits outside the
// persistence path — restoring re-persists through the normal save calls.
type undoEntry struct {
	label     string
	expiresAt time.Time
	restore   func(ctx context.Context)
}

func (m *Manager) setUndoLocked(label string, restore func(ctx context.Context)) {
	m.lastUndo = &undoEntry{
		label:     label,
		expiresAt: time.Now().Add(m.undoTTL),
		restore:   restore,
	}
}

// Undo reverses the most recent delete if its window has not expired.
// Returns false when there is nothing (or nothing fresh enough) to undo.
func (m *Manager) Undo(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.lastUndo
	m.lastUndo = nil
	if entry == nil || time.Now().After(entry.expiresAt) {
		return false, nil
	}
	entry.restore(ctx)
	err := errors.Join(
		m.persistPlayers(ctx),
		m.persistMatches(ctx),
		m.persistSessions(ctx),
		m.persistCurrent(ctx),
	)
	obslog.L().Info("undo_apply", zap.String("action", entry.label))
	return true, err
}
