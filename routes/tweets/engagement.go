package tweets

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"talon/api"
	docs "talon/doclib"
	"talon/state"
	"talon/types"
	"talon/uapi"
)

type LikeTweetRequest struct {
	TweetID uuid.UUID `json:"tweetId" validate:"required" msg:"Tweet id is mandatory"`
}

type CommentTweetRequest struct {
	TweetID     uuid.UUID `json:"tweetId" validate:"required" msg:"Tweet id is mandatory"`
	CommentText string    `json:"commentText" validate:"required" msg:"Comment text is mandatory"`
}

type LikeCommentRequest struct {
	CommentID uuid.UUID `json:"commentId" validate:"required" msg:"Comment id is mandatory"`
}

type ReplyCommentRequest struct {
	CommentID uuid.UUID `json:"commentId" validate:"required" msg:"Comment id is mandatory"`
	ReplyText string    `json:"replyText" validate:"required" msg:"Reply text is mandatory"`
}

// tweetResponse wraps the updated aggregate with references resolved, the
// shape every engagement endpoint returns.
func tweetResponse(d uapi.RouteData, tweet *types.Tweet) uapi.HttpResponse {
	view, err := state.Feed.TweetView(d.Context, tweet)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{
		Json: map[string]any{"tweet": view},
	}
}

func LikeTweetDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Like Tweet",
		Description: "Appends the caller to the tweet's like set. Liking twice records two entries.",
		Req:         LikeTweetRequest{},
		Resp:        types.TweetView{},
	}
}

func LikeTweet(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload LikeTweetRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	tweet, err := state.Tweets.AddLike(d.Context, payload.TweetID, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return tweetResponse(d, tweet)
}

func UnlikeTweetDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unlike Tweet",
		Description: "Removes every occurrence of the caller from the tweet's like set.",
		Req:         LikeTweetRequest{},
		Resp:        types.TweetView{},
	}
}

func UnlikeTweet(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload LikeTweetRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	tweet, err := state.Tweets.RemoveLike(d.Context, payload.TweetID, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return tweetResponse(d, tweet)
}

func CommentTweetDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Comment on Tweet",
		Description: "Appends a new comment to the tweet.",
		Req:         CommentTweetRequest{},
		Resp:        types.TweetView{},
	}
}

func CommentTweet(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload CommentTweetRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	tweet, err := state.Tweets.AddComment(d.Context, payload.TweetID, payload.CommentText, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return tweetResponse(d, tweet)
}

func DeleteCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Comment",
		Description: "Removes a comment. Only the comment's author may delete it.",
		Params: []docs.Parameter{
			{Name: "commentId", In: "path", Description: "The comment id", Required: true, Schema: docs.IdSchema},
		},
		Resp: types.TweetView{},
	}
}

func DeleteComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParamFromCtx(d.Context, "commentId"))
	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	tweet, err := state.Tweets.DeleteComment(d.Context, id, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return tweetResponse(d, tweet)
}

func LikeCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Like Comment",
		Description: "Appends the caller to a comment's like set.",
		Req:         LikeCommentRequest{},
		Resp:        types.TweetView{},
	}
}

func LikeComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload LikeCommentRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	tweet, err := state.Tweets.AddCommentLike(d.Context, payload.CommentID, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return tweetResponse(d, tweet)
}

func UnlikeCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unlike Comment",
		Description: "Removes every occurrence of the caller from a comment's like set.",
		Req:         LikeCommentRequest{},
		Resp:        types.TweetView{},
	}
}

func UnlikeComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload LikeCommentRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	tweet, err := state.Tweets.RemoveCommentLike(d.Context, payload.CommentID, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return tweetResponse(d, tweet)
}

func ReplyCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Reply to Comment",
		Description: "Appends a reply to the comment's reply sequence.",
		Req:         ReplyCommentRequest{},
		Resp:        types.TweetView{},
	}
}

func ReplyComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload ReplyCommentRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	tweet, err := state.Tweets.AddReply(d.Context, payload.CommentID, payload.ReplyText, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return tweetResponse(d, tweet)
}

func DeleteReplyDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Reply",
		Description: "Removes a reply. Only the reply's author may delete it.",
		Params: []docs.Parameter{
			{Name: "replyId", In: "path", Description: "The reply id", Required: true, Schema: docs.IdSchema},
		},
		Resp: types.TweetView{},
	}
}

func DeleteReply(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParamFromCtx(d.Context, "replyId"))
	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	tweet, err := state.Tweets.DeleteReply(d.Context, id, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return tweetResponse(d, tweet)
}
