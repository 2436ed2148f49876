package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talon/errs"
	"talon/types"
)

// Gorm is the postgres-backed Store. Aggregates are one row each with their
// embedded collections in jsonb columns, so a per-document mutation is a
// single-row update; Atomically maps onto a database transaction.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Tweets() TweetRepo { return &gormTweets{db: g.db} }
func (g *Gorm) Users() UserRepo   { return &gormUsers{db: g.db} }

func (g *Gorm) Atomically(ctx context.Context, fn func(Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

type gormTweets struct {
	db *gorm.DB
}

func (r *gormTweets) Get(ctx context.Context, id uuid.UUID) (*types.Tweet, error) {
	var tweet types.Tweet

	err := r.db.WithContext(ctx).First(&tweet, "id = ?", id).Error
	if err != nil {
		return nil, tweetErr(err, id)
	}

	return &tweet, nil
}

func (r *gormTweets) Insert(ctx context.Context, tweet *types.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return errs.Wrap(errs.Storage, err, "inserting tweet %s", tweet.ID)
	}

	return nil
}

func (r *gormTweets) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&types.Tweet{}, "id = ?", id)

	if res.Error != nil {
		return errs.Wrap(errs.Storage, res.Error, "deleting tweet %s", id)
	}

	if res.RowsAffected == 0 {
		return errs.New(errs.NotFound, "tweet %s not found", id)
	}

	return nil
}

// Update locks the row, applies the mutator to the decoded aggregate and
// saves the whole document back. This is the storage-level "atomic positional
// push/pull": concurrent mutations on the same tweet serialize on the lock.
func (r *gormTweets) Update(ctx context.Context, id uuid.UUID, mutate func(*types.Tweet) error) (*types.Tweet, error) {
	var tweet types.Tweet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tweet, "id = ?", id).Error
		if err != nil {
			return tweetErr(err, id)
		}

		if err := mutate(&tweet); err != nil {
			return err
		}

		if err := tx.Save(&tweet).Error; err != nil {
			return errs.Wrap(errs.Storage, err, "saving tweet %s", id)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &tweet, nil
}

func (r *gormTweets) ByComment(ctx context.Context, commentID uuid.UUID) (*types.Tweet, error) {
	var tweet types.Tweet

	err := r.db.WithContext(ctx).
		Where(`jsonb_path_exists(comments, '$[*]."_id" ? (@ == $cid)', jsonb_build_object('cid', ?::text))`, commentID.String()).
		First(&tweet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "no tweet contains comment %s", commentID)
		}

		return nil, errs.Wrap(errs.Storage, err, "looking up tweet by comment %s", commentID)
	}

	return &tweet, nil
}

func (r *gormTweets) ByReply(ctx context.Context, replyID uuid.UUID) (*types.Tweet, error) {
	var tweet types.Tweet

	err := r.db.WithContext(ctx).
		Where(`jsonb_path_exists(comments, '$[*]."commentReplies"[*]."_id" ? (@ == $rid)', jsonb_build_object('rid', ?::text))`, replyID.String()).
		First(&tweet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "no tweet contains reply %s", replyID)
		}

		return nil, errs.Wrap(errs.Storage, err, "looking up tweet by reply %s", replyID)
	}

	return &tweet, nil
}

// All returns tweets in natural insertion order. The feed intentionally does
// not sort newest-first.
func (r *gormTweets) All(ctx context.Context) ([]types.Tweet, error) {
	var tweets []types.Tweet

	if err := r.db.WithContext(ctx).Find(&tweets).Error; err != nil {
		return nil, errs.Wrap(errs.Storage, err, "listing tweets")
	}

	return tweets, nil
}

func (r *gormTweets) ByAuthor(ctx context.Context, author uuid.UUID) ([]types.Tweet, error) {
	var tweets []types.Tweet

	if err := r.db.WithContext(ctx).Find(&tweets, "author = ?", author).Error; err != nil {
		return nil, errs.Wrap(errs.Storage, err, "listing tweets by author %s", author)
	}

	return tweets, nil
}

func (r *gormTweets) ByAuthors(ctx context.Context, authors []uuid.UUID) ([]types.Tweet, error) {
	if len(authors) == 0 {
		return []types.Tweet{}, nil
	}

	var tweets []types.Tweet

	if err := r.db.WithContext(ctx).Find(&tweets, "author IN ?", authors).Error; err != nil {
		return nil, errs.Wrap(errs.Storage, err, "listing tweets by authors")
	}

	return tweets, nil
}

func tweetErr(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.New(errs.NotFound, "tweet %s not found", id)
	}

	return errs.Wrap(errs.Storage, err, "loading tweet %s", id)
}

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	var user types.User

	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "user %s not found", id)
		}

		return nil, errs.Wrap(errs.Storage, err, "loading user %s", id)
	}

	return &user, nil
}

func (r *gormUsers) GetMany(ctx context.Context, ids []uuid.UUID) ([]types.User, error) {
	if len(ids) == 0 {
		return []types.User{}, nil
	}

	var users []types.User

	if err := r.db.WithContext(ctx).Find(&users, "id IN ?", ids).Error; err != nil {
		return nil, errs.Wrap(errs.Storage, err, "loading users")
	}

	return users, nil
}

func (r *gormUsers) ByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User

	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "no user with email %s", email)
		}

		return nil, errs.Wrap(errs.Storage, err, "loading user by email")
	}

	return &user, nil
}

func (r *gormUsers) Insert(ctx context.Context, user *types.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return errs.Wrap(errs.Storage, err, "inserting user %s", user.ID)
	}

	return nil
}

func (r *gormUsers) Update(ctx context.Context, id uuid.UUID, mutate func(*types.User) error) (*types.User, error) {
	var user types.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.New(errs.NotFound, "user %s not found", id)
			}

			return errs.Wrap(errs.Storage, err, "loading user %s", id)
		}

		if err := mutate(&user); err != nil {
			return err
		}

		if err := tx.Save(&user).Error; err != nil {
			return errs.Wrap(errs.Storage, err, "saving user %s", id)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *gormUsers) Search(ctx context.Context, key string) ([]types.User, error) {
	var users []types.User

	pattern := "%" + key + "%"

	err := r.db.WithContext(ctx).
		Where("full_name ILIKE ? OR email ILIKE ? OR location ILIKE ?", pattern, pattern, pattern).
		Find(&users).Error
	if err != nil {
		return nil, errs.Wrap(errs.Storage, err, "searching users")
	}

	return users, nil
}
