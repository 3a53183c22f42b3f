package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.CoverageStore using Redis sets, so that several
// runners executing plans of the same run accumulate into one report.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for runs.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for runs.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "waypoint:coverage:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) statesKey(runID string) string {
	return s.prefix + runID + ":states"
}

func (s *Store) transitionsKey(runID string) string {
	return s.prefix + runID + ":transitions"
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// AddStates records visited states.
func (s *Store) AddStates(ctx context.Context, runID string, states ...string) error {
	if len(states) == 0 {
		return nil
	}
	members := make([]any, len(states))
	for i, id := range states {
		members[i] = id
	}
	return s.add(ctx, runID, s.statesKey(runID), members)
}

// AddTransitions records visited transitions. Each triple is stored as its JSON encoding.
func (s *Store) AddTransitions(ctx context.Context, runID string, transitions ...domain.TransitionKey) error {
	if len(transitions) == 0 {
		return nil
	}
	members := make([]any, len(transitions))
	for i, k := range transitions {
		data, err := json.Marshal(k)
		if err != nil {
			return fmt.Errorf("failed to marshal transition: %w", err)
		}
		members[i] = string(data)
	}
	return s.add(ctx, runID, s.transitionsKey(runID), members)
}

func (s *Store) add(ctx context.Context, runID, key string, members []any) error {
	pipe := s.client.Pipeline()

	// 1. Add members, refreshing the TTL
	pipe.SAdd(ctx, key, members...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	// 2. Add to Index (ZSET)
	// Score = Now + TTL. If TTL = 0, Score = +Inf (approx).
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01 (Far enough for now)
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: runID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record coverage in redis: %w", err)
	}
	return nil
}

// States returns the visited states of a run.
func (s *Store) States(ctx context.Context, runID string) ([]string, error) {
	if err := s.exists(ctx, runID); err != nil {
		return nil, err
	}
	states, err := s.client.SMembers(ctx, s.statesKey(runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read states from redis: %w", err)
	}
	return states, nil
}

// Transitions returns the visited transitions of a run.
func (s *Store) Transitions(ctx context.Context, runID string) ([]domain.TransitionKey, error) {
	if err := s.exists(ctx, runID); err != nil {
		return nil, err
	}
	raw, err := s.client.SMembers(ctx, s.transitionsKey(runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read transitions from redis: %w", err)
	}

	out := make([]domain.TransitionKey, 0, len(raw))
	for _, member := range raw {
		var k domain.TransitionKey
		if err := json.Unmarshal([]byte(member), &k); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transition: %w", err)
		}
		out = append(out, k)
	}
	return out, nil
}

func (s *Store) exists(ctx context.Context, runID string) error {
	n, err := s.client.Exists(ctx, s.statesKey(runID), s.transitionsKey(runID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check run existence: %w", err)
	}
	if n == 0 {
		return ports.ErrRunNotFound
	}
	return nil
}

// Delete removes the run.
func (s *Store) Delete(ctx context.Context, runID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.statesKey(runID), s.transitionsKey(runID))
	pipe.ZRem(ctx, s.indexKey(), runID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the stored runs, pruning expired entries from the index first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	// ZREMRANGEBYSCORE key -inf (now)
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired runs: %w", err)
	}

	runs, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
