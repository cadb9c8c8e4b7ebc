package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaultsRender(t *testing.T) {
	c, err := New("")
	if err != nil { t.Fatalf("New: %v", err) }

	msg, err := c.Render("notice.insufficient_players", map[string]any{
		"Needed": 4, "MatchType": "doubles",
	})
	if err != nil { t.Fatalf("Render: %v", err) }
	if msg != "Need at least 4 players for doubles." {
		t.Fatalf("rendered %q", msg)
	}

	if _, err := c.Render("notice.no_such_key", nil); err == nil {
		t.Fatalf("unknown key should error")
	}
	if _, err := c.Render("notice.insufficient_players", map[string]any{"Needed": 4}); err == nil {
		t.Fatalf("missing template data should error")
	}
}

func TestOverrideDirWins(t *testing.T) {
	dir := t.TempDir()
	override := []byte("notice:\n  no_active_session: \"Custom text.\"\n")
	if err := os.WriteFile(filepath.Join(dir, "messages.yaml"), override, 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil { t.Fatalf("New: %v", err) }

	msg, err := c.Render("notice.no_active_session", nil)
	if err != nil { t.Fatalf("Render: %v", err) }
	if msg != "Custom text." {
		t.Fatalf("override not applied: %q", msg)
	}
	// Keys absent from the override keep their embedded defaults.
	if _, err := c.Render("notice.undo_applied", nil); err != nil {
		t.Fatalf("default lost after override: %v", err)
	}
}
