package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/adaptiq/internal/session"
)

// DefaultSessionTTL bounds how long a session document lives in Redis
// after its last write.
const DefaultSessionTTL = 7 * 24 * time.Hour

// RedisOptions configures the Redis-backed stores.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "adaptiq:".
	Prefix string
	TTL    time.Duration
}

// NewRedisClient dials Redis and verifies the connection.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// RedisSessionStore keeps session documents in Redis. Active sessions are
// also indexed in a sorted set scored by last update, which backs
// ListIdle.
type RedisSessionStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ session.Store = (*RedisSessionStore)(nil)

func NewRedisSessionStore(rdb redis.UniversalClient, opts RedisOptions) *RedisSessionStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{rdb: rdb, prefix: opts.Prefix, ttl: ttl}
}

func (s *RedisSessionStore) key(id string) string { return s.prefix + "session:" + id }
func (s *RedisSessionStore) activeKey() string    { return s.prefix + "sessions:active" }

func (s *RedisSessionStore) SaveSession(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.ID), data, s.ttl)
		if sess.Status == session.StatusActive {
			pipe.ZAdd(ctx, s.activeKey(), redis.Z{
				Score:  float64(sess.UpdatedAt.UnixMilli()),
				Member: sess.ID,
			})
		} else {
			pipe.ZRem(ctx, s.activeKey(), sess.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *RedisSessionStore) LoadSession(ctx context.Context, id string) (*session.Session, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &session.SessionNotFoundError{SessionID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	ids, err := s.rdb.ZRangeByScore(ctx, s.activeKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}

	// Drop index entries whose document already expired.
	live := ids[:0]
	for _, id := range ids {
		n, err := s.rdb.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("check session %s: %w", id, err)
		}
		if n == 0 {
			s.rdb.ZRem(ctx, s.activeKey(), id)
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

// RedisExposure keeps each user's recent items in a capped list.
type RedisExposure struct {
	rdb    redis.UniversalClient
	prefix string
	window int
	ttl    time.Duration
}

var _ session.ExposureTracker = (*RedisExposure)(nil)

func NewRedisExposure(rdb redis.UniversalClient, opts RedisOptions, window int) *RedisExposure {
	if window <= 0 {
		window = session.DefaultExposureWindow
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisExposure{rdb: rdb, prefix: opts.Prefix, window: window, ttl: ttl}
}

func (e *RedisExposure) key(userID string) string { return e.prefix + "exposure:" + userID }

func (e *RedisExposure) Recent(ctx context.Context, userID string) (map[string]bool, error) {
	ids, err := e.rdb.LRange(ctx, e.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("query exposures: %w", err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (e *RedisExposure) Record(ctx context.Context, userID, itemID string, _ time.Time) error {
	key := e.key(userID)
	_, err := e.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, itemID)
		pipe.LTrim(ctx, key, 0, int64(e.window-1))
		pipe.Expire(ctx, key, e.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record exposure: %w", err)
	}
	return nil
}
