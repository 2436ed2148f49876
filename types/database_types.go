package types

import (
	"time"

	"github.com/google/uuid"
)

// User is an account profile plus both sides of the follow graph. Followers
// and Following are stored redundantly on each side; the social graph mutator
// keeps them in sync. The lists are jsonb documents on the user row so a
// follow is a single-row write per side.
type User struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey" json:"_id"`
	FullName            string      `gorm:"not null" json:"fullName"`
	Email               string      `gorm:"uniqueIndex;not null" json:"email"`
	Password            string      `gorm:"not null" json:"-"`
	Location            string      `gorm:"not null" json:"location"`
	DOB                 string      `gorm:"not null" json:"DOB"`
	Bio                 string      `gorm:"type:text" json:"bio"`
	ProfileImg          string      `json:"profileImg"`
	BackgroundWallpaper string      `json:"backgroundwallpaper"`
	Followers           []uuid.UUID `gorm:"type:jsonb;serializer:json" json:"followers"`
	Following           []uuid.UUID `gorm:"type:jsonb;serializer:json" json:"following"`
	CreatedAt           time.Time   `json:"createdAt"`
}

// Tweet is the aggregate root: comments and replies are embedded, never
// independently addressable outside their parent. The whole engagement state
// lives in jsonb columns on the tweet row, so every engagement mutation is a
// single-row update.
//
// RetweetFrom holds the *author* of the original tweet, not the tweet id.
// Likes and Retweets are multisets: the same user id may legitimately appear
// more than once (see tweets.Store).
type Tweet struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"_id"`
	Description string      `gorm:"not null" json:"description"`
	Location    string      `gorm:"not null" json:"location"`
	Image       string      `gorm:"not null" json:"image"`
	Author      uuid.UUID   `gorm:"type:uuid;not null;index" json:"author"`
	Date        time.Time   `json:"date"`
	Likes       []uuid.UUID `gorm:"type:jsonb;serializer:json" json:"likes"`
	Comments    []Comment   `gorm:"type:jsonb;serializer:json" json:"comments"`
	RetweetFrom *uuid.UUID  `gorm:"type:uuid" json:"retweetFrom,omitempty"`
	RetweetDate []time.Time `gorm:"type:jsonb;serializer:json" json:"retweetDate"`
	Retweets    []uuid.UUID `gorm:"type:jsonb;serializer:json" json:"retweets"`
}

// Comment is embedded in a Tweet. Ids are uuids, so they are unique across
// the whole store, not just within the owning tweet.
type Comment struct {
	ID          uuid.UUID   `json:"_id"`
	Text        string      `json:"commentText"`
	CommentedBy uuid.UUID   `json:"commentedBy"`
	Likes       []uuid.UUID `json:"likes"`
	Replies     []Reply     `json:"commentReplies"`
}

// Reply is embedded in a Comment.
type Reply struct {
	ID      uuid.UUID `json:"_id"`
	Text    string    `json:"replyText"`
	ReplyBy uuid.UUID `json:"replyBy"`
}

// CommentIndex returns the position of the comment with the given id, or -1.
// This is the explicit id index over the embedded sequence; callers locate a
// comment by position instead of filtering, which keeps ownership checks and
// removals unambiguous.
func (t *Tweet) CommentIndex(id uuid.UUID) int {
	for i := range t.Comments {
		if t.Comments[i].ID == id {
			return i
		}
	}

	return -1
}

// ReplyIndex returns the positions (comment, reply) of the reply with the
// given id, or (-1, -1).
func (t *Tweet) ReplyIndex(id uuid.UUID) (int, int) {
	for ci := range t.Comments {
		for ri := range t.Comments[ci].Replies {
			if t.Comments[ci].Replies[ri].ID == id {
				return ci, ri
			}
		}
	}

	return -1, -1
}

// Clone deep-copies the aggregate, including every embedded collection.
func (t *Tweet) Clone() *Tweet {
	out := *t

	out.Likes = append([]uuid.UUID(nil), t.Likes...)
	out.Retweets = append([]uuid.UUID(nil), t.Retweets...)
	out.RetweetDate = append([]time.Time(nil), t.RetweetDate...)

	if t.RetweetFrom != nil {
		from := *t.RetweetFrom
		out.RetweetFrom = &from
	}

	out.Comments = make([]Comment, len(t.Comments))
	for i, c := range t.Comments {
		cc := c
		cc.Likes = append([]uuid.UUID(nil), c.Likes...)
		cc.Replies = append([]Reply(nil), c.Replies...)
		out.Comments[i] = cc
	}

	return &out
}

// Clone deep-copies the user record.
func (u *User) Clone() *User {
	out := *u

	out.Followers = append([]uuid.UUID(nil), u.Followers...)
	out.Following = append([]uuid.UUID(nil), u.Following...)

	return &out
}
