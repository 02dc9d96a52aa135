package errors

import (
	"context"
	stderrors "errors"
	"fmt"

	"ladderscope/internal/pattern"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidParameter indicates a malformed mode, size, transform or flag
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// Unauthorized indicates a missing or wrong ingest token
	Unauthorized ErrorCode = "UNAUTHORIZED"
	// InsufficientData indicates too few rounds or outcomes for the computation
	InsufficientData ErrorCode = "INSUFFICIENT_DATA"
	// EncodingFailed indicates a stored or submitted round has an unrecognized field
	EncodingFailed ErrorCode = "ENCODING_FAILED"
	// TransformFailed indicates a flip met a value outside its domain
	TransformFailed ErrorCode = "TRANSFORM_FAILED"
	// StoreUnavailable indicates the round store could not be read
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// Timeout indicates the round fetch timed out
	Timeout ErrorCode = "TIMEOUT"
	// RateLimited indicates the client sent too many ingest attempts
	RateLimited ErrorCode = "RATE_LIMITED"
	// Overloaded indicates every scan slot is busy
	Overloaded ErrorCode = "OVERLOADED"
	// Canceled indicates the caller gave up before the request finished
	Canceled ErrorCode = "CANCELED"
	// IngestDisabled indicates no ingest token hash is configured
	IngestDisabled ErrorCode = "INGEST_DISABLED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// LadderError represents an error with code, message, and suggestions
type LadderError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewLadderError creates a new LadderError
func NewLadderError(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *LadderError {
	return &LadderError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *LadderError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LadderError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *LadderError) WithDetails(details interface{}) *LadderError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	InsufficientData: {
		{
			Type:        RunCommand,
			Command:     "ladderscope import --file <rounds.json>",
			Safe:        true,
			Description: "Load more rounds into the store",
		},
	},
	StoreUnavailable: {
		{
			Type:        RunCommand,
			Command:     "ladderscope stats",
			Safe:        true,
			Description: "Check that the round store opens",
		},
	},
	IngestDisabled: {
		{
			Type:        RunCommand,
			Command:     "ladderscope token",
			Safe:        true,
			Description: "Generate an ingest token and put its hash in server.ingestTokenHash",
		},
	},
	EncodingFailed: {
		{
			Type:        RunCommand,
			Command:     "ladderscope prune --before <reg_date>",
			Safe:        false,
			Description: "Remove the malformed rounds and re-import them",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}

// FromCore maps an error from the pattern package (or anything wrapping
// one) to a LadderError. Errors that are already LadderErrors pass through.
func FromCore(err error) *LadderError {
	if err == nil {
		return nil
	}

	var le *LadderError
	if stderrors.As(err, &le) {
		return le
	}

	var encErr *pattern.EncodingError
	var trErr *pattern.TransformError
	var insuf *pattern.InsufficientDataError

	switch {
	case stderrors.Is(err, context.Canceled):
		return NewLadderError(Canceled, "request canceled", err, nil)
	case stderrors.As(err, &encErr):
		return NewLadderError(EncodingFailed, "round has an unrecognized field", err, GetSuggestedFixes(EncodingFailed)).
			WithDetails(map[string]interface{}{"index": encErr.Index, "field": encErr.Field, "value": encErr.Value})
	case stderrors.As(err, &trErr):
		return NewLadderError(TransformFailed, "block cannot be flipped", err, nil)
	case stderrors.As(err, &insuf):
		return NewLadderError(InsufficientData, "not enough data", err, GetSuggestedFixes(InsufficientData)).
			WithDetails(map[string]interface{}{"what": insuf.What, "have": insuf.Have, "need": insuf.Need})
	case stderrors.Is(err, pattern.ErrInsufficientData):
		return NewLadderError(InsufficientData, "not enough data", err, GetSuggestedFixes(InsufficientData))
	case stderrors.Is(err, pattern.ErrBlockSize),
		stderrors.Is(err, pattern.ErrUnknownMode),
		stderrors.Is(err, pattern.ErrUnknownTransform),
		stderrors.Is(err, pattern.ErrUnknownDirection),
		stderrors.Is(err, pattern.ErrUnknownFlavor),
		stderrors.Is(err, pattern.ErrUnknownSymbol),
		stderrors.Is(err, pattern.ErrInvalidPolicy):
		return NewLadderError(InvalidParameter, "invalid parameter", err, nil)
	default:
		return NewLadderError(InternalError, "unexpected error", err, nil)
	}
}
