// Package auth is the identity collaborator: it turns a bearer token into
// the acting user id. The core services never verify credentials themselves;
// they receive the resolved id as a parameter.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"talon/errs"
)

// Resolver resolves a bearer token to the acting user id, or fails with the
// Unauthorized kind.
type Resolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

const sessionPrefix = "session:"

// RedisSessions stores sessions as session:<token> -> user id with a TTL.
type RedisSessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessions(rdb *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, ttl: ttl}
}

func (s *RedisSessions) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, errs.New(errs.Unauthorized, "no session token provided")
	}

	val, err := s.rdb.Get(ctx, sessionPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, errs.New(errs.Unauthorized, "session is expired or unknown")
		}

		return uuid.Nil, errs.Wrap(errs.Storage, err, "resolving session")
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.Unauthorized, err, "session holds a malformed user id")
	}

	return id, nil
}

// Create opens a session for the user and returns the bearer token.
func (s *RedisSessions) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()

	err := s.rdb.Set(ctx, sessionPrefix+token, userID.String(), s.ttl).Err()
	if err != nil {
		return "", errs.Wrap(errs.Storage, err, "creating session")
	}

	return token, nil
}

func (s *RedisSessions) Destroy(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionPrefix+token).Err(); err != nil {
		return errs.Wrap(errs.Storage, err, "destroying session")
	}

	return nil
}
