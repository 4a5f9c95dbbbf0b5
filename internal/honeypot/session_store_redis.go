package honeypot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionKeyPrefix = "honeypot:session:"

// RedisSessionStore keeps sessions in Redis with a TTL, for deployments
// where several API replicas share traffic. Same TTL-bounded lifetime as the
// memory store; cross-restart durability is incidental, not a contract.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	nowFn  func() time.Time
}

// NewRedisSessionStore creates a Redis-backed store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisSessionStore {
	if client == nil {
		panic("honeypot: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("honeypot.internal.sessions")
	}
	return &RedisSessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: tracer,
		nowFn:  time.Now,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *RedisSessionStore) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "honeypot.session.get_or_create")
	defer span.End()

	session, err := s.load(ctx, id)
	if err == nil {
		return session, nil
	}
	if err != ErrSessionNotFound {
		span.RecordError(err)
		return nil, err
	}

	session = &Session{
		ID:        id,
		History:   []Message{},
		StartedAt: s.nowFn().UTC(),
	}
	if err := s.Save(ctx, session); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return session, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "honeypot.session.get")
	defer span.End()

	session, err := s.load(ctx, id)
	if err != nil && err != ErrSessionNotFound {
		span.RecordError(err)
	}
	return session, err
}

func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "honeypot.session.save")
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("honeypot: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("honeypot: failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Count(ctx context.Context) (int, error) {
	ids, err := s.IDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *RedisSessionStore) IDs(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "honeypot.session.ids")
	defer span.End()

	var ids []string
	iter := s.redis.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("honeypot: failed to scan sessions: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisSessionStore) load(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("honeypot: failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("honeypot: failed to decode session: %w", err)
	}
	return &session, nil
}
