package users

import (
	"talon/uapi"

	"github.com/go-chi/chi/v5"
)

type Router struct{}

func (b Router) Tag() (string, string) {
	return "Users", "Account signup, profile reads and updates, and user search."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/users/signup",
		OpId:    "signup",
		Method:  uapi.POST,
		Docs:    SignupDocs,
		Handler: Signup,
	}.Route(r)

	uapi.Route{
		Pattern: "/users/login",
		OpId:    "login",
		Method:  uapi.POST,
		Docs:    LoginDocs,
		Handler: Login,
	}.Route(r)

	uapi.Route{
		Pattern: "/users/logout",
		OpId:    "logout",
		Method:  uapi.POST,
		Docs:    LogoutDocs,
		Handler: Logout,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}",
		OpId:    "get_user",
		Method:  uapi.GET,
		Docs:    GetUserDocs,
		Handler: GetUser,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}",
		OpId:    "update_user",
		Method:  uapi.PUT,
		Docs:    UpdateUserDocs,
		Handler: UpdateUser,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/search/{key}",
		OpId:    "search_users",
		Method:  uapi.GET,
		Docs:    SearchUsersDocs,
		Handler: SearchUsers,
	}.Route(r)
}
