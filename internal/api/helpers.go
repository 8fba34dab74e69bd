package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxRequestBytes bounds the size of a request body.
const maxRequestBytes = 1 << 20

// Error messages returned in the "error" field of error responses.
const (
	errMsgInvalidBody   = "Invalid request body"
	errMsgMissingFields = "Missing required fields"
	errMsgUnauthorized  = "Invalid Credentials or Phone Number"
	errMsgTimeout       = "Timed out waiting for sheet update"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// readBody reads the request body, which must be a JSON object.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading request body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return body, nil
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError writes an error response with the given message.
func respondError(w http.ResponseWriter, status int, msg string) {
	_ = respondJSON(w, status, ErrorResponse{Error: msg})
}
