// Package session issues and resolves the opaque bearer tokens of the API.
// Tokens live in redis with a TTL; logging out deletes the key.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

const keyPrefix = "picc:session:"

type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Create issues a fresh token for userID.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	err = s.client.Set(ctx, keyPrefix+token, strconv.FormatInt(userID, 10), s.ttl).Err()
	if err != nil {
		return "", err
	}
	return token, nil
}

// UserID resolves a token to its user, refreshing the TTL on the way so an
// active session does not expire mid-use.
func (s *Store) UserID(ctx context.Context, token string) (int64, error) {
	val, err := s.client.GetEx(ctx, keyPrefix+token, s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// Revoke invalidates a token. Revoking an unknown token is not an error.
func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
