package apperr

import (
	"errors"
	"fmt"
	"time"

	"github.com/aws/smithy-go"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

// codeUnknownOperation is the synthetic upstream code attached to dispatch
// faults so the status mapper can distinguish them from caller validation.
const codeUnknownOperation = "UnknownOperation"

// Translate classifies any error into a Record. It never fails: an error it
// has no rule for becomes the generic retryable record.
func Translate(err error, requestID string, now time.Time) Record {
	rec := Record{
		RequestID:       requestID,
		Timestamp:       now.UTC().Format(time.RFC3339),
		OriginalMessage: err.Error(),
	}

	var validation *types.ValidationError
	var missing *types.MissingParameterError
	var unknownOp *types.UnknownOperationError
	var apiErr smithy.APIError

	switch {
	case errors.As(err, &unknownOp):
		rec.ErrorType = "ValueError"
		rec.AWSErrorCode = codeUnknownOperation
		rec.UserMessage = unknownOp.Error()
		rec.Severity = SeverityError
		rec.RetrySuggested = false

	case errors.As(err, &validation):
		rec.ErrorType = "ValueError"
		rec.UserMessage = fmt.Sprintf("Invalid input: %s", validation.Error())
		rec.Severity = SeverityError
		rec.RetrySuggested = false

	case errors.As(err, &missing):
		rec.ErrorType = "KeyError"
		rec.UserMessage = fmt.Sprintf("Missing required parameter: %s", missing.Key)
		rec.Severity = SeverityError
		rec.RetrySuggested = false

	case errors.Is(err, types.ErrUnrecognizedEventShape):
		rec.ErrorType = "UnrecognizedEventShape"
		rec.UserMessage = "The request event did not match any recognized trigger shape."
		rec.Severity = SeverityError
		rec.RetrySuggested = false

	case errors.As(err, &apiErr):
		translateAWS(apiErr, &rec)

	default:
		rec.ErrorType = "InternalError"
		rec.UserMessage = "An unexpected error occurred. Please try again or contact support if the problem persists."
		rec.Severity = SeverityError
		rec.RetrySuggested = true
	}

	return rec
}

func translateAWS(apiErr smithy.APIError, rec *Record) {
	code := apiErr.ErrorCode()
	rec.ErrorType = "ClientError"
	rec.AWSErrorCode = code

	switch code {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
		rec.UserMessage = "I don't have permission to access this AWS service. Please ensure the IAM role has the necessary permissions."
		rec.Severity = SeverityError
		rec.RetrySuggested = false
		rec.ActionRequired = "Check IAM permissions"

	case "Throttling", "ThrottlingException", "TooManyRequestsException", "RequestLimitExceeded":
		rec.UserMessage = "AWS is currently rate limiting requests. Please try again in a few moments."
		rec.Severity = SeverityWarning
		rec.RetrySuggested = true
		rec.RetryDelaySeconds = 30

	case "ServiceUnavailable", "ServiceUnavailableException":
		rec.UserMessage = "The AWS service is temporarily unavailable. Please try again later."
		rec.Severity = SeverityError
		rec.RetrySuggested = true
		rec.RetryDelaySeconds = 300

	case "InvalidParameterValue", "ValidationException":
		rec.UserMessage = "One of the parameters provided is invalid. Please check your request and try again."
		rec.Severity = SeverityError
		rec.RetrySuggested = false

	case "InternalError", "InternalFailure":
		rec.UserMessage = "AWS encountered an internal error. Please try again."
		rec.Severity = SeverityError
		rec.RetrySuggested = true

	default:
		rec.UserMessage = fmt.Sprintf("AWS service error: %s", apiErr.ErrorMessage())
		rec.Severity = SeverityError
		rec.RetrySuggested = true
	}
}

// Status returns the transport status code for a record.
func (r Record) Status() int {
	return HTTPStatus(r.ErrorType, r.AWSErrorCode)
}
