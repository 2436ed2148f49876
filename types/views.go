package types

import (
	"time"

	"github.com/google/uuid"
)

// PublicUser is the projection of a user that is safe to embed in another
// entity's response. It never carries the password hash.
type PublicUser struct {
	ID                  uuid.UUID `json:"_id"`
	FullName            string    `json:"fullName"`
	ProfileImg          string    `json:"profileImg"`
	BackgroundWallpaper string    `json:"backgroundwallpaper"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                  u.ID,
		FullName:            u.FullName,
		ProfileImg:          u.ProfileImg,
		BackgroundWallpaper: u.BackgroundWallpaper,
	}
}

// TweetView is a Tweet with its user references resolved to public
// projections. Like and retweet entries stay raw ids, matching what the
// engagement endpoints have always returned.
type TweetView struct {
	ID          uuid.UUID     `json:"_id"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Image       string        `json:"image"`
	Author      *PublicUser   `json:"author"`
	Date        time.Time     `json:"date"`
	Likes       []uuid.UUID   `json:"likes"`
	Comments    []CommentView `json:"comments"`
	RetweetFrom *PublicUser   `json:"retweetFrom,omitempty"`
	RetweetDate []time.Time   `json:"retweetDate"`
	Retweets    []uuid.UUID   `json:"retweets"`
}

type CommentView struct {
	ID          uuid.UUID   `json:"_id"`
	Text        string      `json:"commentText"`
	CommentedBy *PublicUser `json:"commentedBy"`
	Likes       []uuid.UUID `json:"likes"`
	Replies     []ReplyView `json:"commentReplies"`
}

type ReplyView struct {
	ID      uuid.UUID   `json:"_id"`
	Text    string      `json:"replyText"`
	ReplyBy *PublicUser `json:"replyBy"`
}

// ProfileView is another user's profile page: the user record (password is
// never serialized) plus every tweet they authored.
type ProfileView struct {
	User   User        `json:"user"`
	Tweets []TweetView `json:"tweets"`
}
