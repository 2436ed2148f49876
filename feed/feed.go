// Package feed is the read-only composition layer: it pulls tweets through
// the tweet repo, resolves every user reference in one batched directory
// lookup and hands back response views.
package feed

import (
	"context"

	"github.com/google/uuid"

	"talon/database"
	"talon/types"
)

type Assembler struct {
	db database.Store
}

func New(db database.Store) *Assembler {
	return &Assembler{db: db}
}

// AllTweets returns every tweet in natural storage order; the feed makes no
// newest-first promise.
func (a *Assembler) AllTweets(ctx context.Context) ([]types.TweetView, error) {
	tweets, err := a.db.Tweets().All(ctx)
	if err != nil {
		return nil, err
	}

	return a.resolve(ctx, tweets)
}

// SubscribedTweets returns tweets authored by anyone the user follows.
func (a *Assembler) SubscribedTweets(ctx context.Context, userID uuid.UUID) ([]types.TweetView, error) {
	user, err := a.db.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	tweets, err := a.db.Tweets().ByAuthors(ctx, user.Following)
	if err != nil {
		return nil, err
	}

	return a.resolve(ctx, tweets)
}

func (a *Assembler) MyTweets(ctx context.Context, userID uuid.UUID) ([]types.TweetView, error) {
	tweets, err := a.db.Tweets().ByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	return a.resolve(ctx, tweets)
}

func (a *Assembler) SearchUsers(ctx context.Context, key string) ([]types.User, error) {
	return a.db.Users().Search(ctx, key)
}

// OtherUserProfile returns the target's record (password never serializes)
// plus every tweet they authored.
func (a *Assembler) OtherUserProfile(ctx context.Context, userID uuid.UUID) (*types.ProfileView, error) {
	user, err := a.db.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	tweets, err := a.db.Tweets().ByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	views, err := a.resolve(ctx, tweets)
	if err != nil {
		return nil, err
	}

	return &types.ProfileView{User: *user, Tweets: views}, nil
}

// TweetView resolves a single already-loaded aggregate; the mutation
// endpoints use it to return the updated tweet with references filled in.
func (a *Assembler) TweetView(ctx context.Context, tweet *types.Tweet) (*types.TweetView, error) {
	views, err := a.resolve(ctx, []types.Tweet{*tweet})
	if err != nil {
		return nil, err
	}

	return &views[0], nil
}

// resolve collects every referenced user id across the batch, fetches the
// directory records in one pass and projects them into the views. A single
// round trip replaces the cascading per-field lookups the populate chains in
// older clients performed.
func (a *Assembler) resolve(ctx context.Context, tweets []types.Tweet) ([]types.TweetView, error) {
	ids := referencedUsers(tweets)

	resolved, err := a.db.Users().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]types.PublicUser, len(resolved))
	for i := range resolved {
		byID[resolved[i].ID] = resolved[i].Public()
	}

	lookup := func(id uuid.UUID) *types.PublicUser {
		if pu, ok := byID[id]; ok {
			return &pu
		}

		// Dangling reference: the user was deleted out from under the
		// aggregate. The view keeps the slot nil rather than failing the
		// whole feed.
		return nil
	}

	views := make([]types.TweetView, 0, len(tweets))

	for i := range tweets {
		t := &tweets[i]

		view := types.TweetView{
			ID:          t.ID,
			Description: t.Description,
			Location:    t.Location,
			Image:       t.Image,
			Author:      lookup(t.Author),
			Date:        t.Date,
			Likes:       t.Likes,
			Comments:    make([]types.CommentView, 0, len(t.Comments)),
			RetweetDate: t.RetweetDate,
			Retweets:    t.Retweets,
		}

		if t.RetweetFrom != nil {
			view.RetweetFrom = lookup(*t.RetweetFrom)
		}

		for _, c := range t.Comments {
			cv := types.CommentView{
				ID:          c.ID,
				Text:        c.Text,
				CommentedBy: lookup(c.CommentedBy),
				Likes:       c.Likes,
				Replies:     make([]types.ReplyView, 0, len(c.Replies)),
			}

			for _, rp := range c.Replies {
				cv.Replies = append(cv.Replies, types.ReplyView{
					ID:      rp.ID,
					Text:    rp.Text,
					ReplyBy: lookup(rp.ReplyBy),
				})
			}

			view.Comments = append(view.Comments, cv)
		}

		views = append(views, view)
	}

	return views, nil
}

func referencedUsers(tweets []types.Tweet) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := []uuid.UUID{}

	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for i := range tweets {
		t := &tweets[i]

		add(t.Author)

		if t.RetweetFrom != nil {
			add(*t.RetweetFrom)
		}

		for _, c := range t.Comments {
			add(c.CommentedBy)

			for _, rp := range c.Replies {
				add(rp.ReplyBy)
			}
		}
	}

	return ids
}
