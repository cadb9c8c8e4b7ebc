package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/kapu/badminton-tracker-go/internal/domain"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil { t.Fatalf("miniredis: %v", err) }
	t.Cleanup(mr.Close)
	st, err := Open(fmt.Sprintf("redis://%s/0", mr.Addr()))
	if err != nil { t.Fatalf("store.Open: %v", err) }
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestLoadsReturnZeroValuesWhenUnwritten(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	players, err := st.LoadPlayers(ctx)
	if err != nil || players != nil { t.Fatalf("LoadPlayers: %v %v", players, err) }
	cur, err := st.LoadCurrentSessionID(ctx)
	if err != nil || cur != "" { t.Fatalf("LoadCurrentSessionID: %q %v", cur, err) }
	n, err := st.LoadMatchCounter(ctx)
	if err != nil || n != 0 { t.Fatalf("LoadMatchCounter: %d %v", n, err) }
}

func TestRecordRoundTrips(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	players := []domain.Player{{ID: "p1", Name: "Ana", SkillLevel: 4, CreatedAt: time.Now().Truncate(time.Second)}}
	if err := st.SavePlayers(ctx, players); err != nil { t.Fatalf("SavePlayers: %v", err) }
	got, err := st.LoadPlayers(ctx)
	if err != nil { t.Fatalf("LoadPlayers: %v", err) }
	if len(got) != 1 || got[0].ID != "p1" || got[0].SkillLevel != 4 {
		t.Fatalf("player round trip mismatch: %+v", got)
	}

	matches := []domain.Match{{ID: "m1", Type: domain.Singles, Team1: []string{"p1"}, Team2: []string{"p2"}, WinnerTeam: 2, MatchNumber: 1}}
	if err := st.SaveMatches(ctx, matches); err != nil { t.Fatalf("SaveMatches: %v", err) }
	gm, err := st.LoadMatches(ctx)
	if err != nil || len(gm) != 1 || gm[0].WinnerTeam != 2 {
		t.Fatalf("match round trip mismatch: %+v %v", gm, err)
	}

	sessions := []domain.Session{{ID: "s1", Name: "Friday", IsActive: true, PlayerIDs: []string{"p1", "p2"}, MatchIDs: []string{"m1"}}}
	if err := st.SaveSessions(ctx, sessions); err != nil { t.Fatalf("SaveSessions: %v", err) }
	gs, err := st.LoadSessions(ctx)
	if err != nil || len(gs) != 1 || !gs[0].IsActive || len(gs[0].MatchIDs) != 1 {
		t.Fatalf("session round trip mismatch: %+v %v", gs, err)
	}

	if err := st.SaveMatchCounter(ctx, 7); err != nil { t.Fatalf("SaveMatchCounter: %v", err) }
	if n, _ := st.LoadMatchCounter(ctx); n != 7 { t.Fatalf("counter = %d, want 7", n) }
}

func TestCurrentSessionPointerClears(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.SaveCurrentSessionID(ctx, "s1"); err != nil { t.Fatalf("save: %v", err) }
	if cur, _ := st.LoadCurrentSessionID(ctx); cur != "s1" { t.Fatalf("cur = %q", cur) }
	if err := st.SaveCurrentSessionID(ctx, ""); err != nil { t.Fatalf("clear: %v", err) }
	if cur, _ := st.LoadCurrentSessionID(ctx); cur != "" { t.Fatalf("cur after clear = %q", cur) }
}
