package profile

import (
	"talon/uapi"

	"github.com/go-chi/chi/v5"
)

type Router struct{}

func (b Router) Tag() (string, string) {
	return "Profiles", "Other users' profile pages and the follow graph."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/profiles/{id}",
		OpId:    "get_profile",
		Method:  uapi.GET,
		Docs:    GetProfileDocs,
		Handler: GetProfile,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/follow",
		OpId:    "follow",
		Method:  uapi.PUT,
		Docs:    FollowDocs,
		Handler: Follow,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/unfollow",
		OpId:    "unfollow",
		Method:  uapi.PUT,
		Docs:    UnfollowDocs,
		Handler: Unfollow,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
