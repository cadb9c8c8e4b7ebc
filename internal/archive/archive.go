package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kapu/badminton-tracker-go/internal/domain"
)

// Repository mirrors recorded matches into Postgres for long-term history.
// The Redis store stays the source of truth; this is a best-effort copy the
// manager writes after every record/edit.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil { return nil }
	return r.db.Close()
}

// SaveMatch upserts a recorded match. Edits re-run the upsert under the same
// match_id.
func (r *Repository) SaveMatch(ctx context.Context, m *domain.Match, sessionID string) error {
	if r == nil || r.db == nil || m == nil {
		return nil
	}
	if !m.Recorded() {
		return nil
	}

	team1Raw, _ := json.Marshal(m.Team1)
	team2Raw, _ := json.Marshal(m.Team2)

	var score1, score2 sql.NullInt64
	if m.Team1Score != nil {
		score1 = sql.NullInt64{Int64: int64(*m.Team1Score), Valid: true}
	}
	if m.Team2Score != nil {
		score2 = sql.NullInt64{Int64: int64(*m.Team2Score), Valid: true}
	}

	q := `INSERT INTO badminton_matches (
	    match_id, session_id, match_type, match_number,
	    team1_players, team2_players, winner_team,
	    team1_score, team2_score, played_at
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
	  ) ON CONFLICT (match_id) DO UPDATE SET
	    session_id=EXCLUDED.session_id,
	    match_type=EXCLUDED.match_type,
	    match_number=EXCLUDED.match_number,
	    team1_players=EXCLUDED.team1_players,
	    team2_players=EXCLUDED.team2_players,
	    winner_team=EXCLUDED.winner_team,
	    team1_score=EXCLUDED.team1_score,
	    team2_score=EXCLUDED.team2_score,
	    played_at=EXCLUDED.played_at`

	_, err := r.db.ExecContext(ctx, q,
		m.ID, sessionID, string(m.Type), m.MatchNumber,
		string(team1Raw), string(team2Raw), m.WinnerTeam,
		score1, score2, m.Date,
	)
	return err
}
