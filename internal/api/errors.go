package api

import (
	"encoding/json"
	"net/http"

	"ladderscope/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error          string             `json:"error"`
	Code           string             `json:"code"`
	Details        interface{}        `json:"details,omitempty"`
	SuggestedFixes []errors.FixAction `json:"suggestedFixes,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error: err.Error(),
	}

	// If it's a LadderError, include additional information
	if le, ok := err.(*errors.LadderError); ok {
		resp.Code = string(le.Code)
		resp.Details = le.Details
		resp.SuggestedFixes = le.SuggestedFixes
	} else {
		resp.Code = string(errors.InternalError)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteLadderError writes a LadderError with automatic status code mapping
func WriteLadderError(w http.ResponseWriter, err *errors.LadderError) {
	WriteError(w, err, MapErrorToStatus(err.Code))
}

// writeServiceError maps any error from the prediction or ingest layers
// onto the envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	WriteLadderError(w, errors.FromCore(err))
}

// statusClientClosed is the non-standard 499 used when the client went away
// before the response was ready.
const statusClientClosed = 499

// MapErrorToStatus maps error codes to HTTP status codes
func MapErrorToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.InvalidParameter:
		return http.StatusBadRequest // 400
	case errors.Unauthorized:
		return http.StatusUnauthorized // 401
	case errors.IngestDisabled:
		return http.StatusForbidden // 403
	case errors.InsufficientData, errors.EncodingFailed, errors.TransformFailed:
		return http.StatusUnprocessableEntity // 422
	case errors.RateLimited:
		return http.StatusTooManyRequests // 429
	case errors.StoreUnavailable, errors.Overloaded:
		return http.StatusServiceUnavailable // 503
	case errors.Canceled:
		return statusClientClosed // 499
	case errors.Timeout:
		return http.StatusGatewayTimeout // 504
	case errors.InternalError:
		return http.StatusInternalServerError // 500
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

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string, cause error) {
	WriteLadderError(w, errors.NewLadderError(errors.InvalidParameter, message, cause, nil))
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteLadderError(w, errors.NewLadderError(errors.InternalError, message, err, nil))
}

// methodNotAllowed answers 405 and advertises the allowed method
func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
