package profile

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

type FollowRequest struct {
	FollowID uuid.UUID `json:"followId" validate:"required" msg:"Target user id is mandatory"`
}

type UnfollowRequest struct {
	UnfollowID uuid.UUID `json:"unfollowId" validate:"required" msg:"Target user id is mandatory"`
}

func GetProfileDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get User Profile",
		Description: "Returns another user's record plus every tweet they authored.",
		Params: []docs.Parameter{
			{Name: "id", In: "path", Description: "The user id", Required: true, Schema: docs.IdSchema},
		},
		Resp: types.ProfileView{},
	}
}

func GetProfile(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParamFromCtx(d.Context, "id"))
	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	view, err := state.Feed.OtherUserProfile(d.Context, id)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{Json: view}
}

func FollowDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Follow",
		Description: "Records the caller as a follower of the target user and returns the caller's refreshed record.",
		Req:         FollowRequest{},
		Resp:        types.User{},
	}
}

func Follow(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload FollowRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	user, err := state.Users.Follow(d.Context, d.Auth.UserID, payload.FollowID)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{Json: user}
}

func UnfollowDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unfollow",
		Description: "Removes the caller from the target user's followers and returns the caller's refreshed record.",
		Req:         UnfollowRequest{},
		Resp:        types.User{},
	}
}

func Unfollow(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload UnfollowRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	user, err := state.Users.Unfollow(d.Context, d.Auth.UserID, payload.UnfollowID)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{Json: user}
}
