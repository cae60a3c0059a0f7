package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrNoToken signals an absent or malformed Authorization header, as opposed
// to a present-but-invalid token.
var ErrNoToken = errors.New("no bearer token")

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", ErrNoToken
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrNoToken
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}
