package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"maunium.net/go/mautrix"
)

var (
	MUnknown = mautrix.RespError{
		ErrCode: "M_UNKNOWN",
	}
	MMethodNotAllowed = mautrix.RespError{
		ErrCode: "M_METHOD_NOT_ALLOWED",
	}
)

type errorMeta struct {
	statusCode int
	defaultMsg string
}

var errorToMeta = map[string]errorMeta{
	mautrix.MNotFound.ErrCode: {404, "Nothing found here"},
	MUnknown.ErrCode:          {500, "An unknown error occurred"},
	MMethodNotAllowed.ErrCode: {405, "Wrong HTTP method"},
}

type errorData struct {
	Code  string `json:"errcode"`
	Error string `json:"error"`
}

func ResponseErrorMessageJSON(w http.ResponseWriter, r *http.Request, error mautrix.RespError, message string) {
	meta, found := errorToMeta[error.ErrCode]
	if !found {
		panic(fmt.Errorf("missing http status meta for error: %w", error))
	}
	if message == "" {
		message = meta.defaultMsg
	}
	ResponseJSON(w, r, meta.statusCode, errorData{error.ErrCode, message})
}

func ResponseErrorJSON(w http.ResponseWriter, r *http.Request, error mautrix.RespError) {
	ResponseErrorMessageJSON(w, r, error, "")
}

func ResponseJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	b, err := json.Marshal(data)
	if err != nil {
		hlog.FromRequest(r).Err(err).Msgf("Failed to marshal output to JSON: %T", data)
		ResponseRawJSON(w, r, http.StatusInternalServerError, []byte(`{"errcode":"M_UNKNOWN"}`))
		return
	}
	ResponseRawJSON(w, r, statusCode, b)
}

// Write already encoded JSON as-is
func ResponseRawJSON(w http.ResponseWriter, r *http.Request, statusCode int, b []byte) {
	addCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(b); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("Failed to write response")
	}
}

func addCORSHeaders(w http.ResponseWriter) {
	// Recommended CORS headers can be found in https://spec.matrix.org/v1.3/client-server-api/#web-browser-clients
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization")
}
