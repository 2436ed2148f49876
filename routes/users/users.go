package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"talon/api"
	docs "talon/doclib"
	"talon/state"
	"talon/types"
	"talon/uapi"
	userdir "talon/users"
)

type SignupRequest struct {
	FullName            string `json:"fullName" validate:"required" msg:"Full name is mandatory"`
	Email               string `json:"email" validate:"required,email" msg:"A valid email is mandatory"`
	Password            string `json:"password" validate:"required" msg:"Password is mandatory"`
	Location            string `json:"location" validate:"required" msg:"Location is mandatory"`
	DOB                 string `json:"DOB" validate:"required" msg:"Date of birth is mandatory"`
	Bio                 string `json:"bio"`
	ProfileImg          string `json:"profileImg"`
	BackgroundWallpaper string `json:"backgroundwallpaper"`
}

type UpdateUserRequest struct {
	FullName            *string `json:"fullName"`
	Location            *string `json:"location"`
	DOB                 *string `json:"DOB"`
	Bio                 *string `json:"bio"`
	ProfileImg          *string `json:"profileImg"`
	BackgroundWallpaper *string `json:"backgroundwallpaper"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"A valid email is mandatory"`
	Password string `json:"password" validate:"required" msg:"Password is mandatory"`
}

var (
	compiledSignup = uapi.CompileValidationErrors(SignupRequest{})
	compiledLogin  = uapi.CompileValidationErrors(LoginRequest{})
)

func SignupDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Signup",
		Description: "Creates an account. The password must arrive pre-hashed; this service never sees plaintext credentials.",
		Req:         SignupRequest{},
		Resp:        types.Response{},
	}
}

func Signup(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload SignupRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	if err := state.Validator.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return uapi.ValidatorErrorResponse(compiledSignup, verrs)
		}

		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	user, err := state.Users.Create(d.Context, userdir.CreateParams{
		FullName:            payload.FullName,
		Email:               payload.Email,
		Password:            payload.Password,
		Location:            payload.Location,
		DOB:                 payload.DOB,
		Bio:                 payload.Bio,
		ProfileImg:          payload.ProfileImg,
		BackgroundWallpaper: payload.BackgroundWallpaper,
	})
	if err != nil {
		return api.Error(err)
	}

	msg := "User signed up successfully"

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json: types.Response{
			Success: true,
			Message: &msg,
			JSON:    map[string]any{"_id": user.ID},
		},
	}
}

func LoginDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Login",
		Description: "Opens a session for the account and returns the bearer token.",
		Req:         LoginRequest{},
		Resp:        types.Response{},
	}
}

func Login(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload LoginRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	if err := state.Validator.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return uapi.ValidatorErrorResponse(compiledLogin, verrs)
		}

		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	user, err := state.Users.Authenticate(d.Context, payload.Email, payload.Password)
	if err != nil {
		return api.Error(err)
	}

	token, err := state.Sessions.Create(d.Context, user.ID)
	if err != nil {
		return api.Error(err)
	}

	msg := "Logged in successfully"

	return uapi.HttpResponse{
		Json: types.Response{
			Success: true,
			Message: &msg,
			JSON:    map[string]any{"_id": user.ID, "token": token},
		},
	}
}

func LogoutDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Logout",
		Description: "Destroys the caller's session. The token is no longer valid afterwards.",
		Resp:        types.Response{},
	}
}

func Logout(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	if err := state.Sessions.Destroy(d.Context, token); err != nil {
		return api.Error(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func GetUserDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get User",
		Description: "Returns a user record by id. The password hash never serializes.",
		Params: []docs.Parameter{
			{Name: "id", In: "path", Description: "The user id", Required: true, Schema: docs.IdSchema},
		},
		Resp: types.User{},
	}
}

func GetUser(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParamFromCtx(d.Context, "id"))
	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	user, err := state.Users.Get(d.Context, id)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{Json: user}
}

func UpdateUserDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Update User",
		Description: "Partially updates the caller's own profile fields.",
		Params: []docs.Parameter{
			{Name: "id", In: "path", Description: "The user id", Required: true, Schema: docs.IdSchema},
		},
		Req:  UpdateUserRequest{},
		Resp: types.User{},
	}
}

func UpdateUser(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParamFromCtx(d.Context, "id"))
	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	// Profile updates are restricted to the record owner.
	if id != d.Auth.UserID {
		return uapi.DefaultResponse(http.StatusForbidden)
	}

	var payload UpdateUserRequest

	resp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return resp
	}

	user, err := state.Users.UpdateProfile(d.Context, id, userdir.UpdateParams{
		FullName:            payload.FullName,
		Location:            payload.Location,
		DOB:                 payload.DOB,
		Bio:                 payload.Bio,
		ProfileImg:          payload.ProfileImg,
		BackgroundWallpaper: payload.BackgroundWallpaper,
	})
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{Json: user}
}

func SearchUsersDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Search Users",
		Description: "Case-insensitive substring search across full name, email and location.",
		Params: []docs.Parameter{
			{Name: "key", In: "path", Description: "The search key", Required: true, Schema: docs.IdSchema},
		},
		Resp:     []types.User{},
		RespName: "UserList",
	}
}

func SearchUsers(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	key := chi.URLParamFromCtx(d.Context, "key")

	users, err := state.Feed.SearchUsers(d.Context, key)
	if err != nil {
		return api.Error(err)
	}

	return uapi.HttpResponse{Json: users}
}
