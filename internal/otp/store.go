// Package otp stores hashed one-time codes with a fixed validity
// window. Only a bcrypt hash of the code is ever persisted; the
// plaintext exists transiently between generation and email delivery.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no live code exists for an email,
// either because none was issued or because the validity window
// elapsed. Handlers should translate this into an auth failure.
var ErrNotFound = errors.New("otp not found")

// Store persists hashed one-time codes keyed by email. At most one
// live code exists per email: Save replaces any prior entry and
// restarts the validity window.
type Store interface {
	// Save upserts the hash for the email with a fresh TTL.
	Save(ctx context.Context, email, hash string) error
	// Get returns the stored hash, or ErrNotFound when absent or expired.
	Get(ctx context.Context, email string) (string, error)
	// Consume removes the entry, reporting whether a live entry was
	// actually removed. A false result means a concurrent verification
	// already used the code.
	Consume(ctx context.Context, email string) (bool, error)
}

// RedisStore implements Store on Redis. Key expiry enforces the
// validity window; DEL's removed-count makes single-use race-safe.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore with the given code lifetime.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(email string) string {
	return "otp:" + email
}

// Save upserts the hash under otp:<email> with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, email, hash string) error {
	return s.client.Set(ctx, key(email), hash, s.ttl).Err()
}

// Get returns the stored hash or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, email string) (string, error) {
	hash, err := s.client.Get(ctx, key(email)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// Consume deletes the entry and reports whether it still existed.
func (s *RedisStore) Consume(ctx context.Context, email string) (bool, error) {
	removed, err := s.client.Del(ctx, key(email)).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// GenerateCode returns a uniformly random 6-digit numeric code.
func GenerateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
