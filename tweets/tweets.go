// Package tweets is the tweet store: it owns every mutation of the tweet
// aggregate, from compose and delete through the engagement operations on
// embedded comments, replies and like sets, plus the two-sided retweet.
package tweets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talon/database"
	"talon/errs"
	"talon/types"
)

type Store struct {
	db     database.Store
	logger *zap.Logger
}

func New(db database.Store, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

type CreateParams struct {
	Description string
	Location    string
	Image       string
	Author      uuid.UUID

	// Optional; Date defaults to now, the retweet fields default empty.
	Date        *time.Time
	RetweetFrom *uuid.UUID
	RetweetDate []time.Time
	Retweets    []uuid.UUID
	Comments    []types.Comment
}

func (p CreateParams) validate() error {
	if p.Description == "" || p.Location == "" {
		return errs.New(errs.Validation, "description and location are mandatory")
	}

	if p.Image == "" {
		return errs.New(errs.Validation, "image is mandatory")
	}

	if p.Author == uuid.Nil {
		return errs.New(errs.Validation, "author is mandatory")
	}

	return nil
}

func (s *Store) Create(ctx context.Context, p CreateParams) (*types.Tweet, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	date := time.Now()
	if p.Date != nil {
		date = *p.Date
	}

	tweet := &types.Tweet{
		ID:          uuid.New(),
		Description: p.Description,
		Location:    p.Location,
		Image:       p.Image,
		Author:      p.Author,
		Date:        date,
		Likes:       []uuid.UUID{},
		Comments:    p.Comments,
		RetweetFrom: p.RetweetFrom,
		RetweetDate: p.RetweetDate,
		Retweets:    p.Retweets,
	}

	if tweet.Comments == nil {
		tweet.Comments = []types.Comment{}
	}

	if tweet.Retweets == nil {
		tweet.Retweets = []uuid.UUID{}
	}

	if err := s.db.Tweets().Insert(ctx, tweet); err != nil {
		return nil, err
	}

	s.logger.Info("tweet created", zap.String("tweet", tweet.ID.String()), zap.String("author", tweet.Author.String()))

	return tweet, nil
}

// Delete removes the tweet regardless of who asks. The store level performs
// no ownership check on whole-tweet deletion; that matches the behaviour this
// service has always had and callers must not rely on it being stricter.
func (s *Store) Delete(ctx context.Context, tweetID uuid.UUID) error {
	return s.db.Tweets().Delete(ctx, tweetID)
}

// AddLike appends userID to the tweet's like set. There is deliberately no
// duplicate check: the like set is a multiset and liking twice records two
// entries. Enforcing set semantics here would silently change what existing
// clients observe.
func (s *Store) AddLike(ctx context.Context, tweetID, userID uuid.UUID) (*types.Tweet, error) {
	return s.db.Tweets().Update(ctx, tweetID, func(t *types.Tweet) error {
		t.Likes = append(t.Likes, userID)
		return nil
	})
}

// RemoveLike removes every occurrence of userID from the like set, the same
// way a positional pull removes all matching elements.
func (s *Store) RemoveLike(ctx context.Context, tweetID, userID uuid.UUID) (*types.Tweet, error) {
	return s.db.Tweets().Update(ctx, tweetID, func(t *types.Tweet) error {
		t.Likes = removeAll(t.Likes, userID)
		return nil
	})
}

func (s *Store) AddComment(ctx context.Context, tweetID uuid.UUID, text string, commentedBy uuid.UUID) (*types.Tweet, error) {
	if text == "" {
		return nil, errs.New(errs.Validation, "comment text is mandatory")
	}

	comment := types.Comment{
		ID:          uuid.New(),
		Text:        text,
		CommentedBy: commentedBy,
		Likes:       []uuid.UUID{},
		Replies:     []types.Reply{},
	}

	return s.db.Tweets().Update(ctx, tweetID, func(t *types.Tweet) error {
		t.Comments = append(t.Comments, comment)
		return nil
	})
}

// DeleteComment removes the comment only when requestingUser authored it.
// "No tweet embeds this comment" and "the requester is not the author" are
// distinct outcomes here (NotFound vs Unauthorized); the ownership check runs
// inside the atomic update so it sees current state.
func (s *Store) DeleteComment(ctx context.Context, commentID, requestingUser uuid.UUID) (*types.Tweet, error) {
	owner, err := s.db.Tweets().ByComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	return s.db.Tweets().Update(ctx, owner.ID, func(t *types.Tweet) error {
		i := t.CommentIndex(commentID)
		if i < 0 {
			return errs.New(errs.NotFound, "comment %s not found", commentID)
		}

		if t.Comments[i].CommentedBy != requestingUser {
			return errs.New(errs.Unauthorized, "comment %s does not belong to user %s", commentID, requestingUser)
		}

		t.Comments = append(t.Comments[:i], t.Comments[i+1:]...)

		return nil
	})
}

func (s *Store) AddCommentLike(ctx context.Context, commentID, userID uuid.UUID) (*types.Tweet, error) {
	return s.mutateComment(ctx, commentID, func(c *types.Comment) error {
		c.Likes = append(c.Likes, userID)
		return nil
	})
}

func (s *Store) RemoveCommentLike(ctx context.Context, commentID, userID uuid.UUID) (*types.Tweet, error) {
	return s.mutateComment(ctx, commentID, func(c *types.Comment) error {
		c.Likes = removeAll(c.Likes, userID)
		return nil
	})
}

func (s *Store) AddReply(ctx context.Context, commentID uuid.UUID, text string, replyBy uuid.UUID) (*types.Tweet, error) {
	if text == "" {
		return nil, errs.New(errs.Validation, "reply text is mandatory")
	}

	reply := types.Reply{
		ID:      uuid.New(),
		Text:    text,
		ReplyBy: replyBy,
	}

	return s.mutateComment(ctx, commentID, func(c *types.Comment) error {
		c.Replies = append(c.Replies, reply)
		return nil
	})
}

// DeleteReply mirrors DeleteComment: NotFound when no tweet embeds the reply,
// Unauthorized when the requester did not write it.
func (s *Store) DeleteReply(ctx context.Context, replyID, requestingUser uuid.UUID) (*types.Tweet, error) {
	owner, err := s.db.Tweets().ByReply(ctx, replyID)
	if err != nil {
		return nil, err
	}

	return s.db.Tweets().Update(ctx, owner.ID, func(t *types.Tweet) error {
		ci, ri := t.ReplyIndex(replyID)
		if ci < 0 {
			return errs.New(errs.NotFound, "reply %s not found", replyID)
		}

		if t.Comments[ci].Replies[ri].ReplyBy != requestingUser {
			return errs.New(errs.Unauthorized, "reply %s does not belong to user %s", replyID, requestingUser)
		}

		t.Comments[ci].Replies = append(t.Comments[ci].Replies[:ri], t.Comments[ci].Replies[ri+1:]...)

		return nil
	})
}

// mutateComment locates the owning tweet by embedded comment id and applies
// fn to that comment inside the aggregate's atomic update.
func (s *Store) mutateComment(ctx context.Context, commentID uuid.UUID, fn func(*types.Comment) error) (*types.Tweet, error) {
	owner, err := s.db.Tweets().ByComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	return s.db.Tweets().Update(ctx, owner.ID, func(t *types.Tweet) error {
		i := t.CommentIndex(commentID)
		if i < 0 {
			return errs.New(errs.NotFound, "comment %s not found", commentID)
		}

		return fn(&t.Comments[i])
	})
}

// Retweet derives a new tweet from the original and records the actor in the
// original's retweet set. The two writes land in one transaction when the
// store provides one; otherwise they run as a saga where a failed second
// write deletes the freshly inserted retweet, and a failed compensation
// surfaces as PartialFailure rather than a fake success.
func (s *Store) Retweet(ctx context.Context, tweetID, actingUser uuid.UUID) (*types.Tweet, error) {
	original, err := s.db.Tweets().Get(ctx, tweetID)
	if err != nil {
		return nil, err
	}

	retweet := &types.Tweet{
		ID:          uuid.New(),
		Description: original.Description,
		Location:    original.Location,
		Image:       original.Image,
		Author:      actingUser,
		Date:        time.Now(),
		Likes:       []uuid.UUID{},
		Comments:    original.Comments,
		RetweetFrom: &original.Author,
		RetweetDate: []time.Time{time.Now()},
		Retweets:    []uuid.UUID{actingUser},
	}

	markOriginal := func(t *types.Tweet) error {
		t.Retweets = append(t.Retweets, actingUser)
		return nil
	}

	err = s.db.Atomically(ctx, func(tx database.Store) error {
		if err := tx.Tweets().Insert(ctx, retweet); err != nil {
			return err
		}

		_, err := tx.Tweets().Update(ctx, tweetID, markOriginal)

		return err
	})

	if errors.Is(err, database.ErrNoTransactions) {
		err = s.retweetSaga(ctx, retweet, tweetID, markOriginal)
	}

	if err != nil {
		return nil, err
	}

	s.logger.Info("retweet recorded",
		zap.String("original", tweetID.String()),
		zap.String("retweet", retweet.ID.String()),
		zap.String("user", actingUser.String()))

	return retweet, nil
}

func (s *Store) retweetSaga(ctx context.Context, retweet *types.Tweet, originalID uuid.UUID, markOriginal func(*types.Tweet) error) error {
	if err := s.db.Tweets().Insert(ctx, retweet); err != nil {
		return err
	}

	_, err := s.db.Tweets().Update(ctx, originalID, markOriginal)
	if err == nil {
		return nil
	}

	if undoErr := s.db.Tweets().Delete(ctx, retweet.ID); undoErr != nil {
		s.logger.Error("retweet compensation failed, stores are out of sync",
			zap.String("original", originalID.String()),
			zap.String("orphaned_retweet", retweet.ID.String()),
			zap.Error(undoErr))

		return errs.Wrap(errs.PartialFailure, err, "retweet of %s applied partially and could not be rolled back", originalID)
	}

	return err
}

func removeAll(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}

	return out
}
