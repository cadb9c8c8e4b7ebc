package tracker

import (
	"context"
	"math/rand"
	"testing"

	"github.com/kapu/badminton-tracker-go/internal/domain"
	"github.com/kapu/badminton-tracker-go/internal/store"
)

func addSkilledPlayers(t *testing.T, m *Manager, skills map[string]int) map[string]string {
	t.Helper()
	byName := make(map[string]string, len(skills))
	for name, lvl := range skills {
		p, err := m.AddPlayer(context.Background(), name, lvl, nil)
		if err != nil { t.Fatalf("AddPlayer(%s): %v", name, err) }
		byName[name] = p.ID
	}
	return byName
}

func TestSkillDoublesBalancesTeamStrength(t *testing.T) {
	m := newTestManager(t)
	byName := addSkilledPlayers(t, m, map[string]int{
		"Ana": 1, "Ben": 2, "Cho": 4, "Dee": 5,
	})
	ids := []string{byName["Ana"], byName["Ben"], byName["Cho"], byName["Dee"]}
	startTestSession(t, m, ids)

	drafts, err := m.GenerateMatches(context.Background(), domain.Doubles, 1, true)
	if err != nil || len(drafts) != 1 {
		t.Fatalf("GenerateMatches: %v %v", drafts, err)
	}
	d := drafts[0]
	// Extremes pair up: weakest with strongest against the two in the middle.
	if d.TeamOf(byName["Ana"]) != d.TeamOf(byName["Dee"]) {
		t.Fatalf("skill extremes split across teams: %+v", d)
	}
	if d.TeamOf(byName["Ben"]) != d.TeamOf(byName["Cho"]) {
		t.Fatalf("middle skills split across teams: %+v", d)
	}
	if d.TeamOf(byName["Ana"]) == d.TeamOf(byName["Ben"]) {
		t.Fatalf("everyone on one team: %+v", d)
	}
}

func TestSkillSinglesStaysNearMedian(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m, err := NewManager(context.Background(), store.NewMemory(), WithRand(rand.New(rand.NewSource(seed))))
		if err != nil { t.Fatalf("NewManager: %v", err) }
		byName := addSkilledPlayers(t, m, map[string]int{
			"Ana": 1, "Ben": 2, "Cho": 3, "Dee": 4, "Eli": 5,
		})
		startTestSession(t, m, []string{
			byName["Ana"], byName["Ben"], byName["Cho"], byName["Dee"], byName["Eli"],
		})

		drafts, err := m.GenerateMatches(context.Background(), domain.Singles, 1, true)
		if err != nil || len(drafts) != 1 {
			t.Fatalf("GenerateMatches: %v %v", drafts, err)
		}
		// Picks come from the window around the median skill, never the
		// extremes of a 1..5 spread.
		for _, id := range draftPlayers(&drafts[0]) {
			if id == byName["Ana"] || id == byName["Eli"] {
				t.Fatalf("extreme-skill player drafted for a median pairing: %+v", drafts[0])
			}
		}
	}
}

func TestEligiblePoolDropsOverplayed(t *testing.T) {
	players := []domain.Player{
		{ID: "a", SkillLevel: 3},
		{ID: "b", SkillLevel: 3},
		{ID: "c", SkillLevel: 3},
		{ID: "d", SkillLevel: 3},
	}
	counts := map[string]int{"a": 0, "b": 1, "c": 2, "d": 5}

	pool := eligibleBySkillPool(players, counts)
	if len(pool) != 2 {
		t.Fatalf("pool = %v, want the two within one game of the minimum", pool)
	}
	for _, p := range pool {
		if p.ID == "c" || p.ID == "d" {
			t.Fatalf("overplayed %s kept in pool", p.ID)
		}
	}
	if eligibleBySkillPool(nil, nil) != nil {
		t.Fatalf("empty input should yield nil pool")
	}
}

func TestSkillDraftRefusesShortPool(t *testing.T) {
	m := newTestManager(t)
	short := []domain.Player{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	if _, ok := m.skillDraftLocked(short, domain.Doubles); ok {
		t.Fatalf("doubles draft built from three candidates")
	}
	if _, ok := m.skillDraftLocked(short[:1], domain.Singles); ok {
		t.Fatalf("singles draft built from one candidate")
	}
	if _, ok := m.skillDraftLocked(short[:2], domain.Singles); !ok {
		t.Fatalf("two candidates should suffice for singles")
	}
}
