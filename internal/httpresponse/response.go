package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	errs "opening_tree/internal/errors"
)

type Response[T any] struct {
	Status int `json:"status"`
	Body   T   `json:"body,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const INTERNALERRORJSON = "{\"status\": 500,\"body\":{\"error\": \"Internal server error\"}}"

// WriteResponseWithStatus writes body wrapped in a {status, body} envelope.
func WriteResponseWithStatus(log *zap.SugaredLogger, w http.ResponseWriter, status int, body any) {
	jsonByte, err := json.Marshal(Response[any]{Status: status, Body: body})
	if err != nil {
		log.Errorf("marshal response: %v", err)
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err = w.Write(jsonByte); err != nil {
		log.Debugf("write response: %v", err)
	}
}

// WriteError maps err to a status and writes it in the same envelope.
// Internal errors are logged and hidden from the client.
func WriteError(log *zap.SugaredLogger, w http.ResponseWriter, err error) {
	status := StatusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
		msg = "Internal server error"
	} else {
		log.Debugf("request rejected (%d): %v", status, err)
	}
	WriteResponseWithStatus(log, w, status, ErrorResponse{Error: msg})
}

func StatusFromError(err error) int {
	switch {
	case errors.Is(err, errs.ErrSessionNotFound), errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrIllegalMove),
		errors.Is(err, errs.ErrInvalidPosition),
		errors.Is(err, errs.ErrInvalidPath),
		errors.Is(err, errs.ErrUnknownOperation),
		errors.Is(err, errs.ErrInvalidPGN):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrCycle),
		errors.Is(err, errs.ErrAlreadyAttached),
		errors.Is(err, errs.ErrSessionExists),
		errors.Is(err, errs.ErrImportInProgress),
		errors.Is(err, errs.ErrNothingToUndo),
		errors.Is(err, errs.ErrNothingToRedo):
		return http.StatusConflict
	case errors.Is(err, errs.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// implementation similar to http.Error, only difference is the Content-type
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}
