package domain

import "errors"

// Error kinds surfaced by the core. Local failures (parsing, resolution) are
// detected here; upstream kinds are mapped from HTTP status codes by the
// transport adapter and passed through unchanged.
var (
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrAmbiguousMatch     = errors.New("ambiguous match")
	ErrValidation         = errors.New("validation error")
	ErrUnauthorized       = errors.New("upstream unauthorized")
	ErrRateLimited        = errors.New("upstream rate limited")
	ErrService            = errors.New("upstream service error")
)

// ErrorKind returns a stable name for the kind of err, or "error" when the
// error carries no recognized kind.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedTimestamp):
		return "malformed_timestamp"
	case errors.Is(err, ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, ErrAmbiguousMatch):
		return "ambiguous_match"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnauthorized):
		return "upstream_unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "upstream_rate_limited"
	case errors.Is(err, ErrService):
		return "upstream_service_error"
	default:
		return "error"
	}
}
