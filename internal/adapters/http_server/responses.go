package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const genericFailMessage = "Internal Server Error. Please try again later."

// envelope is the body for unmatched routes and unhandled failures.
type envelope struct {
	Status  string `json:"status"` // error|fail
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

type authorsBody struct {
	Authors []string `json:"authors"`
}

type validationBody struct {
	Errors validationErrors `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeValidation(w http.ResponseWriter, errs validationErrors) {
	writeJSON(w, http.StatusBadRequest, validationBody{Errors: errs})
}

func writeFail(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = genericFailMessage
	}
	writeJSON(w, http.StatusInternalServerError, envelope{Status: "fail", Code: http.StatusInternalServerError, Message: msg})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{Status: "error", Code: http.StatusNotFound, Message: "Not found"})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

// writeCacheable writes v with a weak ETag and answers 304 when the client
// already holds the same representation.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response body")
		writeFail(w, "")
		return
	}
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}
