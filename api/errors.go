package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vocdoni/vocdoni-tally/log"
)

// Error is returned by the handlers. It carries a stable numeric code for
// clients and the HTTP status the response is written with.
type Error struct {
	Err        error
	Code       int
	HTTPstatus int
}

// errorBody is the JSON shape of an Error, e.g. {"error":"invalid vote","code":40010}.
type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// MarshalJSON implements json.Marshaler. HTTPstatus is not part of the body.
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorBody{Error: e.Err.Error(), Code: e.Code})
}

func (e Error) Error() string {
	return e.Err.Error()
}

// Unwrap gives errors.Is access to the wrapped cause.
func (e Error) Unwrap() error {
	return e.Err
}

// Write sends e as a JSON response with its HTTP status.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warnw("cannot marshal API error", "error", err.Error())
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	log.Debugw("API error response", "error", e.Error(), "code", e.Code, "httpStatus", e.HTTPstatus)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPstatus)
	if _, err := w.Write(msg); err != nil {
		log.Warnw("cannot write API error", "error", err.Error())
	}
}

func (e Error) wrap(detail string) Error {
	return Error{Err: fmt.Errorf("%w: %s", e.Err, detail), Code: e.Code, HTTPstatus: e.HTTPstatus}
}

// Withf appends a formatted detail to the error message.
func (e Error) Withf(format string, args ...any) Error {
	return e.wrap(fmt.Sprintf(format, args...))
}

// With appends s to the error message.
func (e Error) With(s string) Error {
	return e.wrap(s)
}

// WithErr appends the message of err to the error message.
func (e Error) WithErr(err error) Error {
	return e.wrap(err.Error())
}
