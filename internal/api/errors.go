package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	regerrors "strreg/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// WriteError writes err as JSON with the status mapped from its code.
// Errors without a code are reported as a generic internal error.
func WriteError(w http.ResponseWriter, err error) {
	var re *regerrors.RegistryError
	resp := ErrorResponse{
		Error: "Internal server error",
		Code:  string(regerrors.InternalError),
	}
	if stderrors.As(err, &re) && re.Code != regerrors.InternalError {
		resp.Error = re.Message
		resp.Code = string(re.Code)
		resp.Details = re.Details
	}

	WriteJSON(w, resp, MapErrorToStatus(regerrors.ErrorCode(resp.Code)))
}

// MapErrorToStatus maps registry error codes to HTTP status codes
func MapErrorToStatus(code regerrors.ErrorCode) int {
	switch code {
	case regerrors.MissingField:
		return http.StatusBadRequest // 400
	case regerrors.InvalidBody:
		return http.StatusBadRequest // 400
	case regerrors.InvalidType:
		return http.StatusUnprocessableEntity // 422
	case regerrors.Conflict:
		return http.StatusConflict // 409
	case regerrors.NotFound:
		return http.StatusNotFound // 404
	case regerrors.InvalidFilter:
		return http.StatusBadRequest // 400
	case regerrors.UnparsableQuery:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
