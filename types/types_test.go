package types_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talon/types"
)

func sampleTweet() *types.Tweet {
	return &types.Tweet{
		ID:     uuid.New(),
		Author: uuid.New(),
		Likes:  []uuid.UUID{uuid.New()},
		Comments: []types.Comment{
			{
				ID:          uuid.New(),
				Text:        "first",
				CommentedBy: uuid.New(),
				Likes:       []uuid.UUID{uuid.New()},
				Replies: []types.Reply{
					{ID: uuid.New(), Text: "reply", ReplyBy: uuid.New()},
				},
			},
			{
				ID:          uuid.New(),
				Text:        "second",
				CommentedBy: uuid.New(),
			},
		},
	}
}

func TestCommentIndex(t *testing.T) {
	tweet := sampleTweet()

	assert.Equal(t, 0, tweet.CommentIndex(tweet.Comments[0].ID))
	assert.Equal(t, 1, tweet.CommentIndex(tweet.Comments[1].ID))
	assert.Equal(t, -1, tweet.CommentIndex(uuid.New()))
}

func TestReplyIndex(t *testing.T) {
	tweet := sampleTweet()

	ci, ri := tweet.ReplyIndex(tweet.Comments[0].Replies[0].ID)
	assert.Equal(t, 0, ci)
	assert.Equal(t, 0, ri)

	ci, ri = tweet.ReplyIndex(uuid.New())
	assert.Equal(t, -1, ci)
	assert.Equal(t, -1, ri)
}

func TestTweetCloneIsIndependent(t *testing.T) {
	tweet := sampleTweet()
	from := uuid.New()
	tweet.RetweetFrom = &from

	clone := tweet.Clone()

	clone.Likes[0] = uuid.New()
	clone.Comments[0].Likes[0] = uuid.New()
	clone.Comments[0].Replies[0].Text = "changed"
	*clone.RetweetFrom = uuid.New()

	assert.NotEqual(t, clone.Likes[0], tweet.Likes[0])
	assert.NotEqual(t, clone.Comments[0].Likes[0], tweet.Comments[0].Likes[0])
	assert.Equal(t, "reply", tweet.Comments[0].Replies[0].Text)
	assert.Equal(t, from, *tweet.RetweetFrom)
}

func TestUserCloneIsIndependent(t *testing.T) {
	user := &types.User{
		ID:        uuid.New(),
		FullName:  "Original",
		Followers: []uuid.UUID{uuid.New()},
		Following: []uuid.UUID{uuid.New()},
	}

	clone := user.Clone()

	clone.Followers[0] = uuid.New()
	clone.Following = append(clone.Following, uuid.New())

	assert.NotEqual(t, clone.Followers[0], user.Followers[0])
	require.Len(t, user.Following, 1)
}

func TestPublicProjection(t *testing.T) {
	user := &types.User{
		ID:                  uuid.New(),
		FullName:            "Projected",
		Email:               "secret@example.com",
		Password:            "hashed",
		ProfileImg:          "img",
		BackgroundWallpaper: "wall",
	}

	pub := user.Public()

	assert.Equal(t, user.ID, pub.ID)
	assert.Equal(t, "Projected", pub.FullName)
	assert.Equal(t, "img", pub.ProfileImg)
	assert.Equal(t, "wall", pub.BackgroundWallpaper)
}
