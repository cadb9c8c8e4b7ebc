package tracker

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/badminton-tracker-go/internal/domain"
	"github.com/kapu/badminton-tracker-go/internal/obslog"
	"github.com/kapu/badminton-tracker-go/internal/store"
)

// Archive receives recorded matches for long-term history. Failures are
// logged and never block recording.
type Archive interface {
	SaveMatch(ctx context.Context, match *domain.Match, sessionID string) error
}

// Manager owns the tracker state: players, the recorded match log, sessions,
// the pending draft queue and the per-session match counter. Every mutation
// runs to completion under the lock and is persisted through the store; when
// a save fails with store.ErrCapacityExceeded the in-memory state stays
// authoritative and the error is surfaced to the caller without rollback.
type Manager struct {
	mu      sync.Mutex
	store   store.Store
	archive Archive
	rng     *rand.Rand
	undoTTL time.Duration

	players  []domain.Player
	matches  []domain.Match
	sessions []domain.Session
	current  string         // active session id, "" when none
	queue    []domain.Match // pending drafts, never persisted
	matchNo  int

	lastUndo *undoEntry
}

type Option func(*Manager)

// WithRand injects the random source used for tie-breaks and team
// assignment. Tests pass a seeded source; production uses the default.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithUndoTTL sets how long a destructive action stays reversible.
func WithUndoTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.undoTTL = d
		}
	}
}

const defaultUndoTTL = 6 * time.Second

// NewManager loads all persisted records and returns a ready manager.
func NewManager(ctx context.Context, st store.Store, opts ...Option) (*Manager, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	m := &Manager{
		store:   st,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		undoTTL: defaultUndoTTL,
	}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	if m.players, err = st.LoadPlayers(ctx); err != nil {
		return nil, err
	}
	if m.matches, err = st.LoadMatches(ctx); err != nil {
		return nil, err
	}
	if m.sessions, err = st.LoadSessions(ctx); err != nil {
		return nil, err
	}
	if m.current, err = st.LoadCurrentSessionID(ctx); err != nil {
		return nil, err
	}
	if m.matchNo, err = st.LoadMatchCounter(ctx); err != nil {
		return nil, err
	}
	// The pointer may outlive its session (e.g. deleted elsewhere); drop it
	// rather than resurrect a dead session.
	if m.current != "" {
		if s := m.findSession(m.current); s == nil || !s.IsActive {
			m.current = ""
		}
	}
	return m, nil
}

// AttachArchive wires an optional long-term archive for recorded matches.
func (m *Manager) AttachArchive(a Archive) {
	if m != nil {
		m.archive = a
	}
}

// ---- read accessors ----

func (m *Manager) Players() []domain.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Player, len(m.players))
	copy(out, m.players)
	return out
}

func (m *Manager) Matches() []domain.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMatches(m.matches)
}

func (m *Manager) Sessions() []domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Session, 0, len(m.sessions))
	for i := range m.sessions {
		out = append(out, cloneSession(&m.sessions[i]))
	}
	return out
}

// PendingMatches returns the draft queue in generation order.
func (m *Manager) PendingMatches() []domain.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMatches(m.queue)
}

// CurrentSession returns the active session or nil.
func (m *Manager) CurrentSession() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSession(m.current)
	if s == nil {
		return nil
	}
	c := cloneSession(s)
	return &c
}

// ---- players ----

func (m *Manager) AddPlayer(ctx context.Context, name string, skillLevel int, avatar []byte) (*domain.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyPlayerName
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := domain.Player{
		ID:         uuid.NewString(),
		Name:       name,
		Avatar:     avatar,
		SkillLevel: domain.ClampSkillLevel(skillLevel),
		CreatedAt:  time.Now(),
	}
	m.players = append(m.players, p)
	err := m.persistPlayers(ctx)
	obslog.L().Info("player_add", zap.String("player_id", p.ID), zap.Int("skill", p.SkillLevel))
	return &p, err
}

// UpdatePlayer edits name/skill/avatar. A nil avatar keeps the existing one.
// An unknown id is a silent no-op.
func (m *Manager) UpdatePlayer(ctx context.Context, playerID, name string, skillLevel int, avatar []byte) (*domain.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyPlayerName
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.findPlayer(playerID)
	if p == nil {
		return nil, nil
	}
	p.Name = name
	p.SkillLevel = domain.ClampSkillLevel(skillLevel)
	if avatar != nil {
		p.Avatar = avatar
	}
	err := m.persistPlayers(ctx)
	obslog.L().Info("player_update", zap.String("player_id", p.ID))
	out := *p
	return &out, err
}

// DeletePlayer removes the player from the roster and from every session's
// player set. Historical match rosters keep the id: deleting a player never
// rewrites recorded history.
func (m *Manager) DeletePlayer(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.players {
		if m.players[i].ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	snapshot := m.players[idx]
	memberOf := make([]string, 0, 2)
	for i := range m.sessions {
		if m.sessions[i].HasPlayer(playerID) {
			memberOf = append(memberOf, m.sessions[i].ID)
			m.sessions[i].PlayerIDs = removeString(m.sessions[i].PlayerIDs, playerID)
		}
	}
	m.players = append(m.players[:idx], m.players[idx+1:]...)

	m.setUndoLocked("delete_player", func(context.Context) {
		m.players = append(m.players, snapshot)
		for _, sid := range memberOf {
			if s := m.findSession(sid); s != nil && !s.HasPlayer(snapshot.ID) {
				s.PlayerIDs = append(s.PlayerIDs, snapshot.ID)
			}
		}
	})

	err := errors.Join(m.persistPlayers(ctx), m.persistSessions(ctx))
	obslog.L().Info("player_delete", zap.String("player_id", playerID), zap.Int("sessions_touched", len(memberOf)))
	return err
}

// ---- session lifecycle ----

// StartSession creates a new active session over the given roster. A running
// session is ended first; the draft queue is cleared and the match counter
// resets. An empty name gets a generated default instead of failing.
func (m *Manager) StartSession(ctx context.Context, name string, playerIDs []string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roster := make([]string, 0, len(playerIDs))
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] || m.findPlayer(id) == nil {
			continue
		}
		seen[id] = true
		roster = append(roster, id)
	}
	if len(roster) < 2 {
		return nil, ErrTooFewSessionPlayers
	}

	now := time.Now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Session " + now.Format("Jan 2 15:04")
	}

	if prev := m.findSession(m.current); prev != nil && prev.IsActive {
		ended := now
		prev.IsActive = false
		prev.EndedAt = &ended
		obslog.L().Info("session_auto_end", zap.String("session_id", prev.ID))
	}

	sess := domain.Session{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: now,
		IsActive:  true,
		PlayerIDs: roster,
		MatchIDs:  []string{},
	}
	m.sessions = append(m.sessions, sess)
	m.current = sess.ID
	m.queue = nil
	m.matchNo = 0

	err := errors.Join(
		m.persistSessions(ctx),
		m.persistCurrent(ctx),
		m.persistCounter(ctx),
	)
	obslog.L().Info("session_start", zap.String("session_id", sess.ID), zap.Int("players", len(roster)))
	out := cloneSession(&sess)
	return &out, err
}

// EndSession closes the active session and drops the in-memory queue.
func (m *Manager) EndSession(ctx context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findSession(m.current)
	if s == nil || !s.IsActive {
		return nil, ErrNoActiveSession
	}
	ended := time.Now()
	s.IsActive = false
	s.EndedAt = &ended
	m.current = ""
	m.queue = nil

	err := errors.Join(m.persistSessions(ctx), m.persistCurrent(ctx))
	obslog.L().Info("session_end", zap.String("session_id", s.ID), zap.Int("matches", len(s.MatchIDs)))
	out := cloneSession(s)
	return &out, err
}

// DeleteSession removes a session and cascades to its recorded matches.
// Unknown ids are a silent no-op.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.sessions {
		if m.sessions[i].ID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	snapshot := cloneSession(&m.sessions[idx])
	var removed []domain.Match
	kept := m.matches[:0]
	for _, mt := range m.matches {
		if snapshot.HasMatch(mt.ID) {
			removed = append(removed, mt)
			continue
		}
		kept = append(kept, mt)
	}
	m.matches = kept
	m.sessions = append(m.sessions[:idx], m.sessions[idx+1:]...)
	wasCurrent := m.current == sessionID
	if wasCurrent {
		m.current = ""
		m.queue = nil
	}

	m.setUndoLocked("delete_session", func(context.Context) {
		m.sessions = append(m.sessions, snapshot)
		m.matches = append(m.matches, removed...)
		if wasCurrent && snapshot.IsActive {
			m.current = snapshot.ID
		}
	})

	err := errors.Join(
		m.persistSessions(ctx),
		m.persistMatches(ctx),
		m.persistCurrent(ctx),
	)
	obslog.L().Info("session_delete", zap.String("session_id", sessionID), zap.Int("matches_removed", len(removed)))
	return err
}

// ---- queue: record / discard ----

// RecordMatch turns a pending draft into a recorded match: winner and
// timestamp set, appended to the match log and the session's match list,
// removed from the queue. An unknown draft id is a silent no-op (double-tap
// safety). Scores are kept only when both are provided.
func (m *Manager) RecordMatch(ctx context.Context, draftID string, winnerTeam int, team1Score, team2Score *int) (*domain.Match, error) {
	if winnerTeam != 1 && winnerTeam != 2 {
		return nil, ErrInvalidWinner
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.queue {
		if m.queue[i].ID == draftID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	rec := cloneMatch(&m.queue[idx])
	rec.WinnerTeam = winnerTeam
	rec.Date = time.Now()
	if team1Score != nil && team2Score != nil {
		s1, s2 := *team1Score, *team2Score
		rec.Team1Score, rec.Team2Score = &s1, &s2
	}
	m.queue = append(m.queue[:idx], m.queue[idx+1:]...)
	m.matches = append(m.matches, rec)

	sessionID := ""
	if s := m.findSession(m.current); s != nil {
		s.MatchIDs = append(s.MatchIDs, rec.ID)
		sessionID = s.ID
	}

	err := errors.Join(m.persistMatches(ctx), m.persistSessions(ctx))
	obslog.L().Info("match_record",
		zap.String("match_id", rec.ID),
		zap.String("session_id", sessionID),
		zap.Int("winner_team", winnerTeam),
		zap.Int("match_number", rec.MatchNumber),
	)
	m.archiveRecorded(ctx, &rec, sessionID)
	out := cloneMatch(&rec)
	return &out, err
}

// DiscardDraft drops a pending draft without recording it. Discarding a
// draft that is already gone is a no-op, not an error.
func (m *Manager) DiscardDraft(draftID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.queue {
		if m.queue[i].ID == draftID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			obslog.L().Info("draft_discard", zap.String("match_id", draftID))
			return true
		}
	}
	return false
}

// ---- recorded match edit/delete (outside the session state machine) ----

// EditMatch updates winner and scores of an already recorded match. Unknown
// ids are a silent no-op.
func (m *Manager) EditMatch(ctx context.Context, matchID string, winnerTeam int, team1Score, team2Score *int) (*domain.Match, error) {
	if winnerTeam != 1 && winnerTeam != 2 {
		return nil, ErrInvalidWinner
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var target *domain.Match
	for i := range m.matches {
		if m.matches[i].ID == matchID {
			target = &m.matches[i]
			break
		}
	}
	if target == nil {
		return nil, nil
	}
	target.WinnerTeam = winnerTeam
	if team1Score != nil && team2Score != nil {
		s1, s2 := *team1Score, *team2Score
		target.Team1Score, target.Team2Score = &s1, &s2
	}
	err := m.persistMatches(ctx)
	obslog.L().Info("match_edit", zap.String("match_id", matchID), zap.Int("winner_team", winnerTeam))
	m.archiveRecorded(ctx, target, m.owningSessionID(matchID))
	out := cloneMatch(target)
	return &out, err
}

// DeleteMatch removes a recorded match from the log and from its owning
// session's match list. Unknown ids are a silent no-op.
func (m *Manager) DeleteMatch(ctx context.Context, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.matches {
		if m.matches[i].ID == matchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	snapshot := cloneMatch(&m.matches[idx])
	owner := m.owningSessionID(matchID)
	m.matches = append(m.matches[:idx], m.matches[idx+1:]...)
	if s := m.findSession(owner); s != nil {
		s.MatchIDs = removeString(s.MatchIDs, matchID)
	}

	m.setUndoLocked("delete_match", func(context.Context) {
		m.matches = append(m.matches, snapshot)
		if s := m.findSession(owner); s != nil && !s.HasMatch(snapshot.ID) {
			s.MatchIDs = append(s.MatchIDs, snapshot.ID)
		}
	})

	err := errors.Join(m.persistMatches(ctx), m.persistSessions(ctx))
	obslog.L().Info("match_delete", zap.String("match_id", matchID), zap.String("session_id", owner))
	return err
}

// ---- internals ----

func (m *Manager) findPlayer(id string) *domain.Player {
	for i := range m.players {
		if m.players[i].ID == id {
			return &m.players[i]
		}
	}
	return nil
}

func (m *Manager) findSession(id string) *domain.Session {
	if id == "" {
		return nil
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return &m.sessions[i]
		}
	}
	return nil
}

func (m *Manager) owningSessionID(matchID string) string {
	for i := range m.sessions {
		if m.sessions[i].HasMatch(matchID) {
			return m.sessions[i].ID
		}
	}
	return ""
}

func (m *Manager) archiveRecorded(ctx context.Context, match *domain.Match, sessionID string) {
	if m.archive == nil || match == nil || !match.Recorded() {
		return
	}
	if err := m.archive.SaveMatch(ctx, match, sessionID); err != nil {
		obslog.L().Error("match_archive_error", zap.String("match_id", match.ID), zap.Error(err))
		return
	}
	obslog.L().Info("match_archive", zap.String("match_id", match.ID))
}

func (m *Manager) persistPlayers(ctx context.Context) error {
	return m.logSaveErr("players", m.store.SavePlayers(ctx, m.players))
}

func (m *Manager) persistMatches(ctx context.Context) error {
	return m.logSaveErr("matches", m.store.SaveMatches(ctx, m.matches))
}

func (m *Manager) persistSessions(ctx context.Context) error {
	return m.logSaveErr("sessions", m.store.SaveSessions(ctx, m.sessions))
}

func (m *Manager) persistCurrent(ctx context.Context) error {
	return m.logSaveErr("current_session", m.store.SaveCurrentSessionID(ctx, m.current))
}

func (m *Manager) persistCounter(ctx context.Context) error {
	return m.logSaveErr("match_counter", m.store.SaveMatchCounter(ctx, m.matchNo))
}

func (m *Manager) logSaveErr(record string, err error) error {
	if err != nil {
		obslog.L().Warn("store_save_failed", zap.String("record", record), zap.Error(err))
	}
	return err
}

func cloneMatch(src *domain.Match) domain.Match {
	out := *src
	out.Team1 = append([]string(nil), src.Team1...)
	out.Team2 = append([]string(nil), src.Team2...)
	if src.Team1Score != nil {
		v := *src.Team1Score
		out.Team1Score = &v
	}
	if src.Team2Score != nil {
		v := *src.Team2Score
		out.Team2Score = &v
	}
	return out
}

func cloneMatches(src []domain.Match) []domain.Match {
	out := make([]domain.Match, 0, len(src))
	for i := range src {
		out = append(out, cloneMatch(&src[i]))
	}
	return out
}

func cloneSession(src *domain.Session) domain.Session {
	out := *src
	out.PlayerIDs = append([]string(nil), src.PlayerIDs...)
	out.MatchIDs = append([]string(nil), src.MatchIDs...)
	if src.EndedAt != nil {
		t := *src.EndedAt
		out.EndedAt = &t
	}
	return out
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
