// Package redisstore keeps Transsmart tokens in Redis so that several processes share one
// login and a restart does not force a new one.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tournevent/transsmart/pkg/transsmart"
)

// Config holds Redis connection settings.
type Config struct {
	Addr      string
	Password  string
	KeyPrefix string
}

// Store is a transsmart.TokenStore backed by Redis. Keys expire with the token.
type Store struct {
	db        *redis.Client
	keyPrefix string
	now       func() time.Time
}

// New creates a Store connected to cfg.Addr.
func New(cfg Config) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	return NewWithClient(rdb, cfg.KeyPrefix)
}

// NewWithClient creates a Store on an existing client.
func NewWithClient(db *redis.Client, keyPrefix string) *Store {
	return &Store{
		db:        db,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

// Close terminates the Redis connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Load returns the token stored under key, or a zero token when none is stored.
func (s *Store) Load(ctx context.Context, key string) (transsmart.Token, error) {
	data, err := s.db.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return transsmart.Token{}, nil
	}
	if err != nil {
		return transsmart.Token{}, fmt.Errorf("failed to load token: %w", err)
	}

	var token transsmart.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return transsmart.Token{}, err
	}
	return token, nil
}

// Save stores token under key until the token expires. Expired tokens are not stored.
func (s *Store) Save(ctx context.Context, key string, token transsmart.Token) error {
	ttl := token.Remaining(s.now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := s.db.Set(ctx, s.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

var _ transsmart.TokenStore = (*Store)(nil)
