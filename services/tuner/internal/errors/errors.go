package errors

import "net/http"

type HttpError struct {
	IsUserError bool
	Description string
	StatusCode  int
}

func (e *HttpError) Error() string {
	return e.Description
}

var (
	ErrNoSnippetFound = &HttpError{
		IsUserError: true,
		Description: "no snippet found",
		StatusCode:  http.StatusBadRequest,
	}
	ErrRunInProgress = &HttpError{
		IsUserError: true,
		Description: "a pipeline run is already in progress",
		StatusCode:  http.StatusConflict,
	}
	ErrUnauthorized = &HttpError{
		IsUserError: true,
		Description: "invalid workspace password",
		StatusCode:  http.StatusUnauthorized,
	}
	ErrNoCheckpoint = &HttpError{
		IsUserError: true,
		Description: "no adapter checkpoint loaded",
		StatusCode:  http.StatusServiceUnavailable,
	}
	ErrEmptyPrompt = &HttpError{
		IsUserError: true,
		Description: "prompt must not be empty",
		StatusCode:  http.StatusBadRequest,
	}
)
