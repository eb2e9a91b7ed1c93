package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// userIDHeader carries the authenticated user identity, set by the fronting
// auth proxy. Requests without it are rejected.
const userIDHeader = "X-User-ID"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeNavError maps a NavError code to an HTTP status and writes the error
// body. Non-NavError values map to 500.
func writeNavError(w http.ResponseWriter, err error) {
	var navErr *schema.NavError
	if !errors.As(err, &navErr) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch navErr.Code {
	case schema.ErrCodeValidation, schema.ErrCodeParse:
		status = http.StatusBadRequest
	case schema.ErrCodeNotFound:
		status = http.StatusNotFound
	case schema.ErrCodeConflict:
		status = http.StatusConflict
	case schema.ErrCodeRemote:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(navErr)
}

// userID extracts the authenticated user from the request header. A missing
// header writes a 401 and returns ok=false.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return "", false
	}
	return id, true
}

// queryInt extracts an integer query param with a default value.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
