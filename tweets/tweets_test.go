package tweets_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talon/database"
	"talon/errs"
	"talon/tweets"
	"talon/types"
)

var errBoom = errors.New("boom")

func newStore(t *testing.T) (*tweets.Store, *database.Memory) {
	t.Helper()

	mem := database.NewMemory()

	return tweets.New(mem, zap.NewNop()), mem
}

func compose(t *testing.T, s *tweets.Store, author uuid.UUID) *types.Tweet {
	t.Helper()

	tweet, err := s.Create(context.Background(), tweets.CreateParams{
		Description: "hi",
		Location:    "NYC",
		Image:       "img1",
		Author:      author,
	})
	require.NoError(t, err)

	return tweet
}

func TestCreateRequiresMandatoryFields(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, tweets.CreateParams{Location: "NYC", Image: "img", Author: uuid.New()})
	assert.True(t, errs.IsKind(err, errs.Validation))

	_, err = s.Create(ctx, tweets.CreateParams{Description: "hi", Image: "img", Author: uuid.New()})
	assert.True(t, errs.IsKind(err, errs.Validation))

	_, err = s.Create(ctx, tweets.CreateParams{Description: "hi", Location: "NYC", Author: uuid.New()})
	assert.True(t, errs.IsKind(err, errs.Validation))

	_, err = s.Create(ctx, tweets.CreateParams{Description: "hi", Location: "NYC", Image: "img"})
	assert.True(t, errs.IsKind(err, errs.Validation))
}

func TestLikeThenUnlikeRestoresLikeSet(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	u := uuid.New()

	tweet := compose(t, s, uuid.New())
	prior := append([]uuid.UUID(nil), tweet.Likes...)

	liked, err := s.AddLike(ctx, tweet.ID, u)
	require.NoError(t, err)
	assert.Len(t, liked.Likes, 1)

	unliked, err := s.RemoveLike(ctx, tweet.ID, u)
	require.NoError(t, err)
	assert.Equal(t, prior, unliked.Likes)
}

func TestAddLikeDuplicatesPreserved(t *testing.T) {
	// Liking is a plain append: the like set is a multiset and the store
	// does not enforce set semantics. This pins that behaviour.
	s, _ := newStore(t)
	ctx := context.Background()
	u := uuid.New()

	tweet := compose(t, s, uuid.New())

	_, err := s.AddLike(ctx, tweet.ID, u)
	require.NoError(t, err)

	liked, err := s.AddLike(ctx, tweet.ID, u)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{u, u}, liked.Likes)

	// A single unlike pulls every occurrence.
	unliked, err := s.RemoveLike(ctx, tweet.ID, u)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)
}

func TestLikeUnknownTweet(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.AddLike(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestCommentAndReplyScenario(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()

	tweet := compose(t, s, u1)

	withComment, err := s.AddComment(ctx, tweet.ID, "nice!", u2)
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)

	commentID := withComment.Comments[0].ID

	withReply, err := s.AddReply(ctx, commentID, "thanks", u1)
	require.NoError(t, err)
	require.Len(t, withReply.Comments[0].Replies, 1)

	replyID := withReply.Comments[0].Replies[0].ID

	// u2 did not write the reply: distinct Unauthorized outcome, reply stays.
	_, err = s.DeleteReply(ctx, replyID, u2)
	assert.True(t, errs.IsKind(err, errs.Unauthorized))

	current, err := s.AddCommentLike(ctx, commentID, u2)
	require.NoError(t, err)
	assert.Len(t, current.Comments[0].Replies, 1)

	deleted, err := s.DeleteReply(ctx, replyID, u1)
	require.NoError(t, err)
	assert.Empty(t, deleted.Comments[0].Replies)
}

func TestAddCommentRequiresText(t *testing.T) {
	s, _ := newStore(t)

	tweet := compose(t, s, uuid.New())

	_, err := s.AddComment(context.Background(), tweet.ID, "", uuid.New())
	assert.True(t, errs.IsKind(err, errs.Validation))
}

func TestAddReplyRequiresText(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	tweet := compose(t, s, uuid.New())

	withComment, err := s.AddComment(ctx, tweet.ID, "first", uuid.New())
	require.NoError(t, err)

	_, err = s.AddReply(ctx, withComment.Comments[0].ID, "", uuid.New())
	assert.True(t, errs.IsKind(err, errs.Validation))
}

func TestDeleteCommentRestoresSequence(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	u := uuid.New()

	tweet := compose(t, s, uuid.New())

	withComment, err := s.AddComment(ctx, tweet.ID, "hello", u)
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)

	after, err := s.DeleteComment(ctx, withComment.Comments[0].ID, u)
	require.NoError(t, err)
	assert.Len(t, after.Comments, len(tweet.Comments))
}

func TestDeleteCommentOutcomesSplit(t *testing.T) {
	// "No tweet embeds this comment" and "the requester is not the author"
	// are deliberately distinct outcomes, not one shared not-found.
	s, _ := newStore(t)
	ctx := context.Background()
	owner := uuid.New()

	tweet := compose(t, s, uuid.New())

	withComment, err := s.AddComment(ctx, tweet.ID, "mine", owner)
	require.NoError(t, err)

	_, err = s.DeleteComment(ctx, uuid.New(), owner)
	assert.True(t, errs.IsKind(err, errs.NotFound))

	_, err = s.DeleteComment(ctx, withComment.Comments[0].ID, uuid.New())
	assert.True(t, errs.IsKind(err, errs.Unauthorized))

	// The comment survived both failed attempts.
	current, err := s.AddCommentLike(ctx, withComment.Comments[0].ID, owner)
	require.NoError(t, err)
	assert.Len(t, current.Comments, 1)
}

func TestCommentLikesTargetTheRightComment(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	u := uuid.New()

	tweet := compose(t, s, uuid.New())

	first, err := s.AddComment(ctx, tweet.ID, "first", uuid.New())
	require.NoError(t, err)

	second, err := s.AddComment(ctx, tweet.ID, "second", uuid.New())
	require.NoError(t, err)
	require.Len(t, second.Comments, 2)

	liked, err := s.AddCommentLike(ctx, second.Comments[1].ID, u)
	require.NoError(t, err)
	assert.Empty(t, liked.Comments[0].Likes)
	assert.Equal(t, []uuid.UUID{u}, liked.Comments[1].Likes)

	unliked, err := s.RemoveCommentLike(ctx, second.Comments[1].ID, u)
	require.NoError(t, err)
	assert.Empty(t, unliked.Comments[1].Likes)

	_ = first
}

func TestDeleteTweetHasNoOwnershipCheck(t *testing.T) {
	// Whole-tweet deletion is id-only; any caller may delete any tweet.
	// This pins the permissive behaviour rather than hiding it.
	s, _ := newStore(t)

	tweet := compose(t, s, uuid.New())

	require.NoError(t, s.Delete(context.Background(), tweet.ID))

	err := s.Delete(context.Background(), tweet.ID)
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestRetweetWritesBothSides(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()
	author := uuid.New()
	actor := uuid.New()

	original := compose(t, s, author)

	_, err := s.AddComment(ctx, original.ID, "carried over", uuid.New())
	require.NoError(t, err)

	retweet, err := s.Retweet(ctx, original.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, actor, retweet.Author)
	require.NotNil(t, retweet.RetweetFrom)
	assert.Equal(t, author, *retweet.RetweetFrom)
	assert.Equal(t, []uuid.UUID{actor}, retweet.Retweets)
	assert.Equal(t, original.Description, retweet.Description)
	assert.Len(t, retweet.Comments, 1)
	assert.Len(t, retweet.RetweetDate, 1)

	// The original's retweet set gained exactly one entry for the actor.
	refreshed, err := mem.Tweets().Get(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{actor}, refreshed.Retweets)
}

func TestRetweetUnknownTweet(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Retweet(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestRetweetRollsBackWhenSecondWriteFails(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()

	original := compose(t, s, uuid.New())

	mem.FailOn(database.OpTweetUpdate, 1, errBoom)

	_, err := s.Retweet(ctx, original.ID, uuid.New())
	require.True(t, errs.IsKind(err, errs.Storage))

	// The transaction rolled the insert back: no orphaned retweet, no
	// half-updated original.
	all, err := mem.Tweets().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	refreshed, err := mem.Tweets().Get(ctx, original.ID)
	require.NoError(t, err)
	assert.Empty(t, refreshed.Retweets)
}

func TestRetweetSagaCompensatesWithoutTransactions(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()

	original := compose(t, s, uuid.New())

	mem.DisableTransactions()
	mem.FailOn(database.OpTweetUpdate, 1, errBoom)

	_, err := s.Retweet(ctx, original.ID, uuid.New())
	require.True(t, errs.IsKind(err, errs.Storage))

	// The compensating delete removed the freshly inserted retweet.
	all, err := mem.Tweets().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRetweetSagaSurfacesPartialFailure(t *testing.T) {
	// If the second write fails AND the compensation fails, the two sides
	// are observably out of sync: the orphaned retweet exists while the
	// original's retweet set never gained the actor. The store must report
	// PartialFailure, never success.
	s, mem := newStore(t)
	ctx := context.Background()

	original := compose(t, s, uuid.New())

	mem.DisableTransactions()
	mem.FailOn(database.OpTweetUpdate, 1, errBoom)
	mem.FailOn(database.OpTweetDelete, 1, errBoom)

	_, err := s.Retweet(ctx, original.ID, uuid.New())
	require.True(t, errs.IsKind(err, errs.PartialFailure))

	all, err := mem.Tweets().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	refreshed, err := mem.Tweets().Get(ctx, original.ID)
	require.NoError(t, err)
	assert.Empty(t, refreshed.Retweets)
}
