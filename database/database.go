// Package database holds the persistence contracts and their two
// implementations: gorm/postgres for production and an in-memory store for
// tests. Services receive a Store by reference; nothing reaches for a global
// connection.
package database

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"talon/types"
)

// ErrNoTransactions is returned by Atomically when the backing store cannot
// provide a transactional boundary. Services that need multi-document
// atomicity fall back to a compensating saga when they see it.
var ErrNoTransactions = errors.New("database: store does not support transactions")

type Store interface {
	Tweets() TweetRepo
	Users() UserRepo

	// Atomically runs fn against a store whose writes either all commit or
	// all roll back. fn must use the store it is handed, not the outer one.
	Atomically(ctx context.Context, fn func(Store) error) error
}

// TweetRepo is the per-aggregate store for tweets. Update is the atomic
// positional mutation primitive: the mutator runs against the current state
// of the aggregate under a row lock and the whole document is saved back.
type TweetRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*types.Tweet, error)
	Insert(ctx context.Context, tweet *types.Tweet) error
	Delete(ctx context.Context, id uuid.UUID) error
	Update(ctx context.Context, id uuid.UUID, mutate func(*types.Tweet) error) (*types.Tweet, error)

	// ByComment / ByReply locate the aggregate embedding the given id.
	ByComment(ctx context.Context, commentID uuid.UUID) (*types.Tweet, error)
	ByReply(ctx context.Context, replyID uuid.UUID) (*types.Tweet, error)

	All(ctx context.Context) ([]types.Tweet, error)
	ByAuthor(ctx context.Context, author uuid.UUID) ([]types.Tweet, error)
	ByAuthors(ctx context.Context, authors []uuid.UUID) ([]types.Tweet, error)
}

type UserRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*types.User, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]types.User, error)
	ByEmail(ctx context.Context, email string) (*types.User, error)
	Insert(ctx context.Context, user *types.User) error
	Update(ctx context.Context, id uuid.UUID, mutate func(*types.User) error) (*types.User, error)

	// Search matches key as a case-insensitive substring of full name,
	// email or location.
	Search(ctx context.Context, key string) ([]types.User, error)
}
