package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kapu/badminton-tracker-go/internal/domain"
)

const (
	keyPlayers      = "bt:players"
	keyMatches      = "bt:matches"
	keySessions     = "bt:sessions"
	keyCurrent      = "bt:current_session"
	keyMatchCounter = "bt:match_counter"
)

// RedisStore keeps each logical record as a JSON blob under a bt:* key.
type RedisStore struct{ rdb *redis.Client }

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

// Open connects to redisURL and pings before returning a store.
func Open(redisURL string) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for tracker store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil { return nil, err }
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil { return nil }
	return s.rdb.Close()
}

func (s *RedisStore) LoadPlayers(ctx context.Context) ([]domain.Player, error) {
	var out []domain.Player
	if err := s.loadJSON(ctx, keyPlayers, &out); err != nil { return nil, err }
	return out, nil
}

func (s *RedisStore) SavePlayers(ctx context.Context, players []domain.Player) error {
	return s.saveJSON(ctx, keyPlayers, players)
}

func (s *RedisStore) LoadMatches(ctx context.Context) ([]domain.Match, error) {
	var out []domain.Match
	if err := s.loadJSON(ctx, keyMatches, &out); err != nil { return nil, err }
	return out, nil
}

func (s *RedisStore) SaveMatches(ctx context.Context, matches []domain.Match) error {
	return s.saveJSON(ctx, keyMatches, matches)
}

func (s *RedisStore) LoadSessions(ctx context.Context) ([]domain.Session, error) {
	var out []domain.Session
	if err := s.loadJSON(ctx, keySessions, &out); err != nil { return nil, err }
	return out, nil
}

func (s *RedisStore) SaveSessions(ctx context.Context, sessions []domain.Session) error {
	return s.saveJSON(ctx, keySessions, sessions)
}

func (s *RedisStore) LoadCurrentSessionID(ctx context.Context) (string, error) {
	raw, err := s.rdb.Get(ctx, keyCurrent).Result()
	if err == redis.Nil { return "", nil }
	if err != nil { return "", err }
	return raw, nil
}

func (s *RedisStore) SaveCurrentSessionID(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return s.rdb.Del(ctx, keyCurrent).Err()
	}
	return wrapCapacity(s.rdb.Set(ctx, keyCurrent, id, 0).Err())
}

func (s *RedisStore) LoadMatchCounter(ctx context.Context) (int, error) {
	raw, err := s.rdb.Get(ctx, keyMatchCounter).Result()
	if err == redis.Nil { return 0, nil }
	if err != nil { return 0, err }
	n, convErr := strconv.Atoi(raw)
	if convErr != nil { return 0, nil }
	return n, nil
}

func (s *RedisStore) SaveMatchCounter(ctx context.Context, n int) error {
	return wrapCapacity(s.rdb.Set(ctx, keyMatchCounter, strconv.Itoa(n), 0).Err())
}

func (s *RedisStore) loadJSON(ctx context.Context, key string, out any) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil { return nil }
	if err != nil { return err }
	return json.Unmarshal(raw, out)
}

func (s *RedisStore) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil { return err }
	return wrapCapacity(s.rdb.Set(ctx, key, raw, 0).Err())
}

// wrapCapacity maps redis maxmemory refusals onto ErrCapacityExceeded so
// callers see the store-agnostic failure mode.
func wrapCapacity(err error) error {
	if err == nil { return nil }
	if strings.Contains(err.Error(), "OOM") {
		return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	}
	return err
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil { return nil, err }
	if u.Scheme != "redis" && u.Scheme != "rediss" { return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme) }
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" { if n, err := strconv.Atoi(p); err == nil { db = n } }
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
