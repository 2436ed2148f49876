package api

import (
	"net/http"
	"strings"

	"talon/constants"
	"talon/errs"
	"talon/state"
	"talon/types"
	"talon/uapi"
)

type DefaultResponder struct{}

func (d DefaultResponder) New(err string, ctx map[string]string) any {
	return types.ApiError{
		Message: err,
		Context: ctx,
	}
}

// Authorize resolves the caller's bearer token to the acting user id through
// the session store. Routes without auth requirements pass through untouched;
// AuthOptional routes degrade to anonymous instead of failing.
func Authorize(r uapi.Route, req *http.Request) (uapi.AuthData, uapi.HttpResponse, bool) {
	if len(r.Auth) == 0 {
		return uapi.AuthData{}, uapi.HttpResponse{}, true
	}

	token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")

	userID, err := state.Sessions.Resolve(req.Context(), token)
	if err != nil {
		if r.AuthOptional {
			return uapi.AuthData{}, uapi.HttpResponse{}, true
		}

		return uapi.AuthData{}, uapi.DefaultResponse(http.StatusUnauthorized), false
	}

	return uapi.AuthData{UserID: userID, Authorized: true}, uapi.HttpResponse{}, true
}

// Error maps a taxonomy error to its HTTP response. Routes funnel every
// service failure through here so kinds and statuses stay in lockstep.
func Error(err error) uapi.HttpResponse {
	var status int

	switch errs.KindOf(err) {
	case errs.Validation:
		status = http.StatusBadRequest
	case errs.NotFound:
		status = http.StatusNotFound
	case errs.Unauthorized:
		status = http.StatusUnauthorized
	case errs.Conflict:
		status = http.StatusConflict
	case errs.PartialFailure:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	return uapi.HttpResponse{
		Status: status,
		Json: types.ApiError{
			Message: err.Error(),
			Context: map[string]string{"kind": errs.KindOf(err).String()},
		},
	}
}

func Setup() {
	uapi.SetupState(uapi.UAPIState{
		Logger:    state.Logger,
		Authorize: Authorize,
		AuthTypeMap: map[string]string{
			"user": "User",
		},
		Context: state.Context,
		Constants: &uapi.UAPIConstants{
			ResourceNotFound:    constants.ResourceNotFound,
			BadRequest:          constants.BadRequest,
			Forbidden:           constants.Forbidden,
			Unauthorized:        constants.Unauthorized,
			InternalServerError: constants.InternalServerError,
			MethodNotAllowed:    constants.MethodNotAllowed,
			BodyRequired:        constants.BodyRequired,
		},
		DefaultResponder: DefaultResponder{},
	})
}
