package auth

import "errors"

var (
	// ErrIngestDisabled means no ingest token hash is configured
	ErrIngestDisabled = errors.New("ingest over HTTP is disabled")
	// ErrMissingToken means the request carried no bearer token
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken means the token did not match the configured hash
	ErrInvalidToken = errors.New("invalid ingest token")
	// ErrRateLimited means the client exceeded its request budget
	ErrRateLimited = errors.New("too many requests")
)
