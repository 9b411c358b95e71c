// Package middleware provides HTTP middleware for the library service
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/R3E-Network/library_service/internal/errors"
)

type errorBody struct {
	Error   string                 `json:"error"`
	Code    errors.ErrorCode       `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// respondError writes a ServiceError as the standard JSON error body.
func respondError(w http.ResponseWriter, se *errors.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(se.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorBody{Error: se.Message, Code: se.Code, Details: se.Details})
}
