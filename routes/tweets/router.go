package tweets

import (
	"talon/uapi"

	"github.com/go-chi/chi/v5"
)

type Router struct{}

func (b Router) Tag() (string, string) {
	return "Tweets", "Composing, deleting and engaging with tweets: likes, comments, replies and retweets."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/tweets",
		OpId:    "get_all_tweets",
		Method:  uapi.GET,
		Docs:    GetAllTweetsDocs,
		Handler: GetAllTweets,
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/subscribed",
		OpId:    "get_subscribed_tweets",
		Method:  uapi.GET,
		Docs:    GetSubscribedTweetsDocs,
		Handler: GetSubscribedTweets,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/mine",
		OpId:    "get_my_tweets",
		Method:  uapi.GET,
		Docs:    GetMyTweetsDocs,
		Handler: GetMyTweets,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets",
		OpId:    "create_tweet",
		Method:  uapi.POST,
		Docs:    CreateTweetDocs,
		Handler: CreateTweet,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/{id}",
		OpId:    "delete_tweet",
		Method:  uapi.DELETE,
		Docs:    DeleteTweetDocs,
		Handler: DeleteTweet,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/retweet/{id}",
		OpId:    "retweet",
		Method:  uapi.POST,
		Docs:    RetweetDocs,
		Handler: Retweet,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/like",
		OpId:    "like_tweet",
		Method:  uapi.PUT,
		Docs:    LikeTweetDocs,
		Handler: LikeTweet,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/unlike",
		OpId:    "unlike_tweet",
		Method:  uapi.PUT,
		Docs:    UnlikeTweetDocs,
		Handler: UnlikeTweet,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/comment",
		OpId:    "comment_tweet",
		Method:  uapi.PUT,
		Docs:    CommentTweetDocs,
		Handler: CommentTweet,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/comment/{commentId}",
		OpId:    "delete_comment",
		Method:  uapi.DELETE,
		Docs:    DeleteCommentDocs,
		Handler: DeleteComment,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/likecomment",
		OpId:    "like_comment",
		Method:  uapi.PUT,
		Docs:    LikeCommentDocs,
		Handler: LikeComment,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/unlikecomment",
		OpId:    "unlike_comment",
		Method:  uapi.PUT,
		Docs:    UnlikeCommentDocs,
		Handler: UnlikeComment,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/reply",
		OpId:    "reply_comment",
		Method:  uapi.PUT,
		Docs:    ReplyCommentDocs,
		Handler: ReplyComment,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/tweets/reply/{replyId}",
		OpId:    "delete_reply",
		Method:  uapi.DELETE,
		Docs:    DeleteReplyDocs,
		Handler: DeleteReply,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
