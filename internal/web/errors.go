package web

import (
	"fmt"
	"net/http"
	"strings"
)

type PageError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *PageError) Unwrap() error {
	return e.Err
}

func lower(s string) string {
	return strings.ToLower(s)
}

func NewBadRequestError() *PageError {
	return &PageError{
		StatusCode: http.StatusBadRequest,
		Message:    lower(http.StatusText(http.StatusBadRequest)),
	}
}

func NewNotFoundError() *PageError {
	return &PageError{
		StatusCode: http.StatusNotFound,
		Message:    lower(http.StatusText(http.StatusNotFound)),
	}
}

func NewForbiddenError() *PageError {
	return &PageError{
		StatusCode: http.StatusForbidden,
		Message:    "you are not allowed here",
	}
}

func NewInternalServerError(err error) *PageError {
	return &PageError{
		StatusCode: http.StatusInternalServerError,
		Message:    lower(http.StatusText(http.StatusInternalServerError)),
		Err:        err,
	}
}
