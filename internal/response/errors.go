package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Upstream records API ──────────────────────────────────────────
	ErrUpstreamUnavailable ErrCode = "UPSTREAM_UNAVAILABLE"
	ErrUpstreamRejected    ErrCode = "UPSTREAM_REJECTED"

	// ─── Export ────────────────────────────────────────────────────────
	ErrExportNotEligible ErrCode = "EXPORT_NOT_ELIGIBLE"
	ErrUnknownFormat     ErrCode = "UNKNOWN_EXPORT_FORMAT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is not valid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The identifier format is not valid."
	case ErrInvalidPayload:
		return "The request payload is not valid."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrUpstreamUnavailable:
		return "The records service is currently unavailable. Please retry."
	case ErrUpstreamRejected:
		return "The records service rejected the request. Please retry."
	case ErrExportNotEligible:
		return "This semester has not reached the completion threshold for export."
	case ErrUnknownFormat:
		return "Unsupported export format. Use csv or xlsx."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
