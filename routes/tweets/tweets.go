package tweets

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"talon/api"
	docs "talon/doclib"
	"talon/state"
	tweetstore "talon/tweets"
	"talon/types"
	"talon/uapi"
)

type CreateTweetRequest struct {
	Description string          `json:"description" validate:"required" msg:"Description is mandatory"`
	Location    string          `json:"location" validate:"required" msg:"Location is mandatory"`
	Image       string          `json:"image" validate:"required" msg:"Image is mandatory"`
	Date        *time.Time      `json:"date"`
	RetweetFrom *uuid.UUID      `json:"retweetFrom"`
	RetweetDate []time.Time     `json:"retweetDate"`
	Retweets    []uuid.UUID     `json:"retweets"`
	Comments    []types.Comment `json:"comments"`
}

var compiledCreateTweet = uapi.CompileValidationErrors(CreateTweetRequest{})

func GetAllTweetsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get All Tweets",
		Description: "Returns every tweet with author, commenter and reply references resolved.",
		Resp:        []types.TweetView{},
		RespName:    "TweetList",
	}
}

func GetAllTweets(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	views, err := state.Feed.AllTweets(d.Context)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{
		Json: map[string]any{"tweets": views},
	}
}

func GetSubscribedTweetsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Subscribed Tweets",
		Description: "Returns tweets authored by users the caller follows.",
		Resp:        []types.TweetView{},
		RespName:    "TweetList",
	}
}

func GetSubscribedTweets(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	views, err := state.Feed.SubscribedTweets(d.Context, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{
		Json: map[string]any{"tweets": views},
	}
}

func GetMyTweetsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get My Tweets",
		Description: "Returns tweets authored by the caller.",
		Resp:        []types.TweetView{},
		RespName:    "TweetList",
	}
}

func GetMyTweets(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	views, err := state.Feed.MyTweets(d.Context, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{
		Json: map[string]any{"tweets": views},
	}
}

func CreateTweetDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Tweet",
		Description: "Composes a new tweet. Description, location and image are mandatory.",
		Req:         CreateTweetRequest{},
		Resp:        types.TweetView{},
	}
}

func CreateTweet(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload CreateTweetRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	if err := state.Validator.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return uapi.ValidatorErrorResponse(compiledCreateTweet, verrs)
		}

		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	tweet, err := state.Tweets.Create(d.Context, tweetstore.CreateParams{
		Description: payload.Description,
		Location:    payload.Location,
		Image:       payload.Image,
		Author:      d.Auth.UserID,
		Date:        payload.Date,
		RetweetFrom: payload.RetweetFrom,
		RetweetDate: payload.RetweetDate,
		Retweets:    payload.Retweets,
		Comments:    payload.Comments,
	})
	if err != nil {
		return api.Error(err)
	}

	view, err := state.Feed.TweetView(d.Context, tweet)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   map[string]any{"tweet": view},
	}
}

func DeleteTweetDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Tweet",
		Description: "Deletes a tweet by id. Deletion is not restricted to the author.",
		Params: []docs.Parameter{
			{Name: "id", In: "path", Description: "The tweet id", Required: true, Schema: docs.IdSchema},
		},
		Resp: types.Response{},
	}
}

func DeleteTweet(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParamFromCtx(d.Context, "id"))
	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	if err := state.Tweets.Delete(d.Context, id); err != nil {
		return api.Error(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func RetweetDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Retweet",
		Description: "Creates a new tweet derived from the original and records the caller in the original's retweet set.",
		Params: []docs.Parameter{
			{Name: "id", In: "path", Description: "The original tweet id", Required: true, Schema: docs.IdSchema},
		},
		Resp: types.TweetView{},
	}
}

func Retweet(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParamFromCtx(d.Context, "id"))
	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	tweet, err := state.Tweets.Retweet(d.Context, id, d.Auth.UserID)
	if err != nil {
		return api.Error(err)
	}

	view, err := state.Feed.TweetView(d.Context, tweet)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   map[string]any{"tweet": view},
	}
}
