package feed_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talon/database"
	"talon/feed"
	"talon/tweets"
	"talon/types"
	"talon/users"
)

type fixture struct {
	mem    *database.Memory
	feed   *feed.Assembler
	tweets *tweets.Store
	users  *users.Directory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := database.NewMemory()

	return &fixture{
		mem:    mem,
		feed:   feed.New(mem),
		tweets: tweets.New(mem, zap.NewNop()),
		users:  users.New(mem, zap.NewNop()),
	}
}

func (f *fixture) signup(t *testing.T, name, email, location string) *types.User {
	t.Helper()

	user, err := f.users.Create(context.Background(), users.CreateParams{
		FullName:   name,
		Email:      email,
		Password:   "hashed",
		Location:   location,
		DOB:        "1990-01-01",
		ProfileImg: "img-" + name,
	})
	require.NoError(t, err)

	return user
}

func (f *fixture) post(t *testing.T, author uuid.UUID, text string) *types.Tweet {
	t.Helper()

	tweet, err := f.tweets.Create(context.Background(), tweets.CreateParams{
		Description: text,
		Location:    "NYC",
		Image:       "img",
		Author:      author,
	})
	require.NoError(t, err)

	return tweet
}

func TestAllTweetsKeepsInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.signup(t, "Author", "order@example.com", "NYC")

	f.post(t, author.ID, "first")
	f.post(t, author.ID, "second")
	f.post(t, author.ID, "third")

	views, err := f.feed.AllTweets(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, "first", views[0].Description)
	assert.Equal(t, "second", views[1].Description)
	assert.Equal(t, "third", views[2].Description)
}

func TestSubscribedTweetsFollowTheGraph(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reader := f.signup(t, "Reader", "reader@example.com", "NYC")
	followed := f.signup(t, "Followed", "followed@example.com", "LA")
	stranger := f.signup(t, "Stranger", "stranger@example.com", "SF")

	f.post(t, followed.ID, "from followed")
	f.post(t, stranger.ID, "from stranger")
	f.post(t, reader.ID, "my own")

	_, err := f.users.Follow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)

	views, err := f.feed.SubscribedTweets(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "from followed", views[0].Description)

	// The reader's own tweets come from a separate lookup.
	mine, err := f.feed.MyTweets(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "my own", mine[0].Description)
}

func TestSubscribedTweetsUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.feed.SubscribedTweets(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestSearchUsersIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.signup(t, "Alice", "alice@example.com", "North Carolina")
	f.signup(t, "Bob", "carlos@example.com", "LA")
	f.signup(t, "Carmen", "carmen@example.com", "SF")
	f.signup(t, "Dave", "dave@example.com", "Chicago")

	// "car" matches "Carolina" in a location, "carlos@" in an email and
	// "Carmen" in a name, all regardless of case.
	found, err := f.feed.SearchUsers(ctx, "car")
	require.NoError(t, err)
	require.Len(t, found, 3)

	names := []string{found[0].FullName, found[1].FullName, found[2].FullName}
	assert.ElementsMatch(t, []string{"Alice", "Bob", "Carmen"}, names)
}

func TestResolveProjectsReferencedUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.signup(t, "Author", "a@example.com", "NYC")
	commenter := f.signup(t, "Commenter", "c@example.com", "LA")
	replier := f.signup(t, "Replier", "r@example.com", "SF")

	tweet := f.post(t, author.ID, "hello")

	withComment, err := f.tweets.AddComment(ctx, tweet.ID, "nice!", commenter.ID)
	require.NoError(t, err)

	_, err = f.tweets.AddReply(ctx, withComment.Comments[0].ID, "thanks", replier.ID)
	require.NoError(t, err)

	views, err := f.feed.AllTweets(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]

	require.NotNil(t, view.Author)
	assert.Equal(t, "Author", view.Author.FullName)
	assert.Equal(t, "img-Author", view.Author.ProfileImg)

	require.Len(t, view.Comments, 1)
	require.NotNil(t, view.Comments[0].CommentedBy)
	assert.Equal(t, "Commenter", view.Comments[0].CommentedBy.FullName)

	require.Len(t, view.Comments[0].Replies, 1)
	require.NotNil(t, view.Comments[0].Replies[0].ReplyBy)
	assert.Equal(t, "Replier", view.Comments[0].Replies[0].ReplyBy.FullName)
}

func TestResolveRetweetFromAndDanglingRefs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.signup(t, "Original", "orig@example.com", "NYC")
	actor := f.signup(t, "Retweeter", "re@example.com", "LA")

	original := f.post(t, author.ID, "worth sharing")

	// A comment by a user that was never created leaves a dangling
	// reference; the view keeps the slot nil instead of failing.
	_, err := f.tweets.AddComment(ctx, original.ID, "ghost", uuid.New())
	require.NoError(t, err)

	retweet, err := f.tweets.Retweet(ctx, original.ID, actor.ID)
	require.NoError(t, err)

	view, err := f.feed.TweetView(ctx, retweet)
	require.NoError(t, err)

	require.NotNil(t, view.Author)
	assert.Equal(t, "Retweeter", view.Author.FullName)

	require.NotNil(t, view.RetweetFrom)
	assert.Equal(t, "Original", view.RetweetFrom.FullName)

	require.Len(t, view.Comments, 1)
	assert.Nil(t, view.Comments[0].CommentedBy)
}

func TestOtherUserProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.signup(t, "Profiled", "p@example.com", "NYC")
	other := f.signup(t, "Other", "o@example.com", "LA")

	f.post(t, author.ID, "mine one")
	f.post(t, other.ID, "not mine")
	f.post(t, author.ID, "mine two")

	profile, err := f.feed.OtherUserProfile(ctx, author.ID)
	require.NoError(t, err)

	assert.Equal(t, "Profiled", profile.User.FullName)
	require.Len(t, profile.Tweets, 2)
	assert.Equal(t, "mine one", profile.Tweets[0].Description)
	assert.Equal(t, "mine two", profile.Tweets[1].Description)
}

func TestOtherUserProfileUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.feed.OtherUserProfile(context.Background(), uuid.New())
	assert.Error(t, err)
}
