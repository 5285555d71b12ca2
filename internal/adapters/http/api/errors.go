package api

import (
	"errors"
	"net/http"

	"github.com/okian/rehabplan/internal/domain/model"
)

// ErrBadRequest marks a malformed query parameter.
var ErrBadRequest = errors.New("bad request")

// Codes carried in the error body.
const (
	codeBadRequest = "bad_request"
	codeNotFound   = "not_found"
	codeInternal   = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps domain errors onto status codes. Validation
// failures and bad parameters are the caller's fault; a missing patient or
// protocol is a 404; anything else is ours.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, err)
	}
}
