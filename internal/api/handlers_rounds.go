package api

import (
	stderrors "errors"
	"mime"
	"net/http"
	"strconv"

	"ladderscope/internal/auth"
	"ladderscope/internal/errors"
	"ladderscope/internal/ingest"
)

// handleRounds serves POST /rounds. The body is one batch in any ingest
// format, optionally gzip-compressed. The batch is validated as a whole
// before anything is written.
func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if s.importer == nil {
		WriteLadderError(w, errors.NewLadderError(errors.IngestDisabled, "this server has no writable round store", nil, nil))
		return
	}
	if retry, err := s.guard.Check(r); err != nil {
		s.writeAuthError(w, r, err, retry)
		return
	}

	format, err := requestFormat(r)
	if err != nil {
		BadRequest(w, "invalid parameter", err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	rounds, err := ingest.Decode(body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			WriteError(w, errors.NewLadderError(errors.InvalidParameter,
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", nil, nil),
				http.StatusRequestEntityTooLarge)
			return
		}
		BadRequest(w, "cannot decode round batch", err)
		return
	}

	res, err := s.importer.Store(r.Context(), ingest.SourceHTTP, rounds)
	if err != nil {
		le := errors.FromCore(err)
		if le.Code == errors.InternalError {
			le = errors.NewLadderError(errors.StoreUnavailable, "round store rejected the batch", err,
				errors.GetSuggestedFixes(errors.StoreUnavailable))
		}
		WriteLadderError(w, le)
		return
	}

	WriteJSON(w, res, http.StatusCreated)
}

func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error, retry int) {
	s.logger.Warn("Rejected ingest request",
		"remote", r.RemoteAddr,
		"reason", err.Error(),
		"request_id", GetRequestID(r.Context()),
	)

	switch {
	case stderrors.Is(err, auth.ErrIngestDisabled):
		WriteLadderError(w, errors.NewLadderError(errors.IngestDisabled, err.Error(), nil,
			errors.GetSuggestedFixes(errors.IngestDisabled)))
	case stderrors.Is(err, auth.ErrRateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		WriteLadderError(w, errors.NewLadderError(errors.RateLimited, err.Error(), nil, nil).
			WithDetails(map[string]interface{}{"retryAfterSec": retry}))
	default:
		w.Header().Set("WWW-Authenticate", `Bearer realm="ladderscope"`)
		WriteLadderError(w, errors.NewLadderError(errors.Unauthorized, err.Error(), nil, nil))
	}
}

// requestFormat picks the decoder from ?format= or the Content-Type.
// Anything unrecognized is sniffed.
func requestFormat(r *http.Request) (ingest.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return ingest.ParseFormat(f)
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ingest.FormatAuto, nil
	}
	switch mt {
	case "application/json":
		return ingest.FormatJSON, nil
	case "application/x-ndjson", "application/jsonl", "application/x-jsonlines":
		return ingest.FormatJSONLines, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return ingest.FormatYAML, nil
	}
	return ingest.FormatAuto, nil
}
