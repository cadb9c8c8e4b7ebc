package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/kapu/badminton-tracker-go/internal/domain"
	"github.com/kapu/badminton-tracker-go/internal/msgcat"
	"github.com/kapu/badminton-tracker-go/internal/obslog"
	"github.com/kapu/badminton-tracker-go/internal/store"
	"github.com/kapu/badminton-tracker-go/internal/tracker"
)

// Server is the JSON front end over the tracker core. It owns no state of
// its own: every request maps onto one public manager operation, and
// responses carry the operation result plus an optional user-facing notice
// from the message catalog.
type Server struct {
	mgr      *tracker.Manager
	cat      *msgcat.Catalog
	maxBatch int
	srv      *fasthttp.Server
}

type Option func(*Server)

// WithMaxBatch caps the per-request generation count.
func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

func New(mgr *tracker.Manager, cat *msgcat.Catalog, opts ...Option) *Server {
	s := &Server{mgr: mgr, cat: cat, maxBatch: 10}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &fasthttp.Server{Handler: s.handle, Name: "badminton-tracker"}
	return s
}

func (s *Server) ListenAndServe(addr string) error { return s.srv.ListenAndServe(addr) }

func (s *Server) Shutdown() error {
	if s == nil || s.srv == nil { return nil }
	return s.srv.Shutdown()
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	method := string(ctx.Method())
	path := strings.Trim(string(ctx.Path()), "/")
	parts := strings.Split(path, "/")
	rctx := context.Background()

	switch {
	case path == "players" && method == fasthttp.MethodGet:
		s.writeJSON(ctx, fasthttp.StatusOK, s.mgr.Players())
	case path == "players" && method == fasthttp.MethodPost:
		s.addPlayer(rctx, ctx)
	case len(parts) == 2 && parts[0] == "players" && method == fasthttp.MethodPut:
		s.updatePlayer(rctx, ctx, parts[1])
	case len(parts) == 2 && parts[0] == "players" && method == fasthttp.MethodDelete:
		s.finish(ctx, nil, s.mgr.DeletePlayer(rctx, parts[1]))

	case path == "sessions" && method == fasthttp.MethodGet:
		s.writeJSON(ctx, fasthttp.StatusOK, s.mgr.Sessions())
	case path == "sessions/current" && method == fasthttp.MethodGet:
		s.writeJSON(ctx, fasthttp.StatusOK, s.mgr.CurrentSession())
	case path == "sessions/start" && method == fasthttp.MethodPost:
		s.startSession(rctx, ctx)
	case path == "sessions/end" && method == fasthttp.MethodPost:
		sess, err := s.mgr.EndSession(rctx)
		s.finish(ctx, sess, err)
	case len(parts) == 2 && parts[0] == "sessions" && method == fasthttp.MethodDelete:
		s.finish(ctx, nil, s.mgr.DeleteSession(rctx, parts[1]))

	case path == "queue" && method == fasthttp.MethodGet:
		s.writeJSON(ctx, fasthttp.StatusOK, s.mgr.PendingMatches())
	case path == "queue/generate" && method == fasthttp.MethodPost:
		s.generate(rctx, ctx)
	case len(parts) == 3 && parts[0] == "queue" && parts[2] == "record" && method == fasthttp.MethodPost:
		s.record(rctx, ctx, parts[1])
	case len(parts) == 2 && parts[0] == "queue" && method == fasthttp.MethodDelete:
		// Discard is idempotent: a vanished draft is fine either way.
		s.mgr.DiscardDraft(parts[1])
		s.writeJSON(ctx, fasthttp.StatusOK, map[string]bool{"ok": true})

	case path == "matches" && method == fasthttp.MethodGet:
		s.writeJSON(ctx, fasthttp.StatusOK, s.mgr.Matches())
	case len(parts) == 2 && parts[0] == "matches" && method == fasthttp.MethodPut:
		s.editMatch(rctx, ctx, parts[1])
	case len(parts) == 2 && parts[0] == "matches" && method == fasthttp.MethodDelete:
		s.finish(ctx, nil, s.mgr.DeleteMatch(rctx, parts[1]))

	case len(parts) == 2 && parts[0] == "stats" && method == fasthttp.MethodGet:
		s.writeJSON(ctx, fasthttp.StatusOK, s.mgr.PlayerStats(parts[1]))
	case path == "rankings" && method == fasthttp.MethodGet:
		s.writeJSON(ctx, fasthttp.StatusOK, s.mgr.Rankings())
	case path == "counts" && method == fasthttp.MethodGet:
		s.writeJSON(ctx, fasthttp.StatusOK, s.mgr.GameCounts())
	case path == "suggest" && method == fasthttp.MethodGet:
		s.suggest(ctx)

	case path == "undo" && method == fasthttp.MethodPost:
		s.undo(rctx, ctx)

	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

type playerRequest struct {
	Name       string `json:"name"`
	SkillLevel int    `json:"skill_level"`
	Avatar     []byte `json:"avatar,omitempty"`
}

func (s *Server) addPlayer(rctx context.Context, ctx *fasthttp.RequestCtx) {
	var req playerRequest
	if !s.readBody(ctx, &req) {
		return
	}
	p, err := s.mgr.AddPlayer(rctx, req.Name, req.SkillLevel, req.Avatar)
	s.finish(ctx, p, err)
}

func (s *Server) updatePlayer(rctx context.Context, ctx *fasthttp.RequestCtx, id string) {
	var req playerRequest
	if !s.readBody(ctx, &req) {
		return
	}
	p, err := s.mgr.UpdatePlayer(rctx, id, req.Name, req.SkillLevel, req.Avatar)
	s.finish(ctx, p, err)
}

type startSessionRequest struct {
	Name      string   `json:"name"`
	PlayerIDs []string `json:"player_ids"`
}

func (s *Server) startSession(rctx context.Context, ctx *fasthttp.RequestCtx) {
	var req startSessionRequest
	if !s.readBody(ctx, &req) {
		return
	}
	sess, err := s.mgr.StartSession(rctx, req.Name, req.PlayerIDs)
	s.finish(ctx, sess, err)
}

type generateRequest struct {
	MatchType domain.MatchType `json:"match_type"`
	Count     int              `json:"count"`
	UseSkill  bool             `json:"use_skill"`
}

func (s *Server) generate(rctx context.Context, ctx *fasthttp.RequestCtx) {
	var req generateRequest
	if !s.readBody(ctx, &req) {
		return
	}
	if req.Count > s.maxBatch {
		req.Count = s.maxBatch
	}
	drafts, err := s.mgr.GenerateMatches(rctx, req.MatchType, req.Count, req.UseSkill)
	if errors.Is(err, tracker.ErrInsufficientPlayers) {
		s.writeNotice(ctx, fasthttp.StatusBadRequest, "notice.insufficient_players", map[string]any{
			"Needed":    req.MatchType.PlayersPerMatch(),
			"MatchType": string(req.MatchType),
		})
		return
	}
	s.finish(ctx, drafts, err)
}

type resultRequest struct {
	WinnerTeam int  `json:"winner_team"`
	Team1Score *int `json:"team1_score,omitempty"`
	Team2Score *int `json:"team2_score,omitempty"`
}

func (s *Server) record(rctx context.Context, ctx *fasthttp.RequestCtx, draftID string) {
	var req resultRequest
	if !s.readBody(ctx, &req) {
		return
	}
	rec, err := s.mgr.RecordMatch(rctx, draftID, req.WinnerTeam, req.Team1Score, req.Team2Score)
	s.finish(ctx, rec, err)
}

func (s *Server) editMatch(rctx context.Context, ctx *fasthttp.RequestCtx, matchID string) {
	var req resultRequest
	if !s.readBody(ctx, &req) {
		return
	}
	rec, err := s.mgr.EditMatch(rctx, matchID, req.WinnerTeam, req.Team1Score, req.Team2Score)
	s.finish(ctx, rec, err)
}

func (s *Server) suggest(ctx *fasthttp.RequestCtx) {
	players, _ := strconv.Atoi(string(ctx.QueryArgs().Peek("players")))
	matchType := domain.MatchType(string(ctx.QueryArgs().Peek("match_type")))
	if !matchType.Valid() {
		s.writeNotice(ctx, fasthttp.StatusBadRequest, "notice.invalid_match_type", nil)
		return
	}
	n := tracker.SuggestedMatchCount(players, matchType)
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]int{"suggested_matches": n})
}

func (s *Server) undo(rctx context.Context, ctx *fasthttp.RequestCtx) {
	applied, err := s.mgr.Undo(rctx)
	key := "notice.undo_expired"
	if applied {
		key = "notice.undo_applied"
	}
	if err != nil {
		s.finish(ctx, map[string]bool{"applied": applied}, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]any{"applied": applied, "notice": s.notice(key, nil)})
}

// ---- response plumbing ----

// finish maps a manager result onto an HTTP response. A capacity failure is
// not a request failure: state is valid in memory, so the result ships with
// a storage notice and 507.
func (s *Server) finish(ctx *fasthttp.RequestCtx, result any, err error) {
	switch {
	case err == nil:
		s.writeJSON(ctx, fasthttp.StatusOK, result)
	case errors.Is(err, store.ErrCapacityExceeded):
		s.writeJSON(ctx, fasthttp.StatusInsufficientStorage, map[string]any{
			"result": result,
			"notice": s.notice("notice.storage_full", nil),
		})
	case errors.Is(err, tracker.ErrEmptyPlayerName):
		s.writeNotice(ctx, fasthttp.StatusBadRequest, "notice.empty_player_name", nil)
	case errors.Is(err, tracker.ErrTooFewSessionPlayers):
		s.writeNotice(ctx, fasthttp.StatusBadRequest, "notice.too_few_session_players", nil)
	case errors.Is(err, tracker.ErrInvalidWinner):
		s.writeNotice(ctx, fasthttp.StatusBadRequest, "notice.invalid_winner", nil)
	case errors.Is(err, tracker.ErrInvalidMatchType):
		s.writeNotice(ctx, fasthttp.StatusBadRequest, "notice.invalid_match_type", nil)
	case errors.Is(err, tracker.ErrNoActiveSession):
		s.writeNotice(ctx, fasthttp.StatusConflict, "notice.no_active_session", nil)
	default:
		obslog.L().Error("api_error", zap.String("path", string(ctx.Path())), zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
}

func (s *Server) readBody(ctx *fasthttp.RequestCtx, out any) bool {
	if err := json.Unmarshal(ctx.PostBody(), out); err != nil {
		s.writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(raw)
}

func (s *Server) writeNotice(ctx *fasthttp.RequestCtx, status int, key string, data map[string]any) {
	s.writeJSON(ctx, status, map[string]string{"notice": s.notice(key, data)})
}

func (s *Server) notice(key string, data map[string]any) string {
	if s.cat == nil {
		return key
	}
	msg, err := s.cat.Render(key, data)
	if err != nil {
		return key
	}
	return msg
}
