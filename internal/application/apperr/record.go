// Package apperr translates faults of any origin into the uniform,
// transport-agnostic error record callers receive, and maps records onto
// transport status codes.
package apperr

// Severities carried by error records.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Record is the uniform user-facing error shape. It is transport-agnostic;
// status-code mapping is a separate pure function.
type Record struct {
	RequestID         string `json:"request_id"`
	Timestamp         string `json:"timestamp"`
	ErrorType         string `json:"error_type"`
	AWSErrorCode      string `json:"aws_error_code,omitempty"`
	OriginalMessage   string `json:"original_message,omitempty"`
	UserMessage       string `json:"user_message"`
	Severity          string `json:"severity"`
	RetrySuggested    bool   `json:"retry_suggested"`
	RetryDelaySeconds int    `json:"retry_delay_seconds,omitempty"`
	ActionRequired    string `json:"action_required,omitempty"`
}

// HTTPStatus maps a record onto a transport status code. The mapping is a
// pure function of the error type and upstream code.
func HTTPStatus(errorType, awsErrorCode string) int {
	switch awsErrorCode {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
		return 403
	case "Throttling", "ThrottlingException", "TooManyRequestsException", "RequestLimitExceeded":
		return 429
	case "InvalidParameterValue", "ValidationException":
		return 400
	case "ServiceUnavailable", "ServiceUnavailableException":
		return 503
	case codeUnknownOperation:
		// An unroutable operation is a dispatch fault, not caller-input
		// validation; it surfaces as a server-side failure.
		return 500
	}
	switch errorType {
	case "ValueError", "KeyError":
		return 400
	}
	return 500
}
