package apperr

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

var translateNow = time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

func TestTranslateAWSErrors(t *testing.T) {
	tests := []struct {
		name           string
		code           string
		wantSeverity   string
		wantRetry      bool
		wantDelay      int
		wantStatus     int
		wantActionReq  string
	}{
		{
			name:          "access denied",
			code:          "AccessDenied",
			wantSeverity:  SeverityError,
			wantRetry:     false,
			wantStatus:    403,
			wantActionReq: "Check IAM permissions",
		},
		{
			name:         "throttling",
			code:         "ThrottlingException",
			wantSeverity: SeverityWarning,
			wantRetry:    true,
			wantDelay:    30,
			wantStatus:   429,
		},
		{
			name:         "service unavailable",
			code:         "ServiceUnavailable",
			wantSeverity: SeverityError,
			wantRetry:    true,
			wantDelay:    300,
			wantStatus:   503,
		},
		{
			name:         "invalid parameter",
			code:         "InvalidParameterValue",
			wantSeverity: SeverityError,
			wantRetry:    false,
			wantStatus:   400,
		},
		{
			name:         "unclassified upstream code",
			code:         "SomethingNovel",
			wantSeverity: SeverityError,
			wantRetry:    true,
			wantStatus:   500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &smithy.GenericAPIError{Code: tt.code, Message: "upstream says no"}
			rec := Translate(err, "req-1", translateNow)

			assert.Equal(t, "ClientError", rec.ErrorType)
			assert.Equal(t, tt.code, rec.AWSErrorCode)
			assert.Equal(t, tt.wantSeverity, rec.Severity)
			assert.Equal(t, tt.wantRetry, rec.RetrySuggested)
			assert.Equal(t, tt.wantDelay, rec.RetryDelaySeconds)
			assert.Equal(t, tt.wantStatus, rec.Status())
			assert.Equal(t, tt.wantActionReq, rec.ActionRequired)
			assert.Equal(t, "req-1", rec.RequestID)
		})
	}
}

func TestTranslateValidationError(t *testing.T) {
	err := &types.ValidationError{Key: "granularity", Message: "must be one of: DAILY, MONTHLY"}
	rec := Translate(err, "req-2", translateNow)

	assert.Equal(t, "ValueError", rec.ErrorType)
	assert.Contains(t, rec.UserMessage, "Invalid input")
	assert.Contains(t, rec.UserMessage, "granularity")
	assert.False(t, rec.RetrySuggested)
	assert.Equal(t, 400, rec.Status())
}

func TestTranslateMissingParameter(t *testing.T) {
	err := &types.MissingParameterError{Key: "resource_id"}
	rec := Translate(err, "req-3", translateNow)

	assert.Equal(t, "KeyError", rec.ErrorType)
	assert.Contains(t, rec.UserMessage, "resource_id")
	assert.Equal(t, 400, rec.Status())
}

func TestTranslateUnknownOperation(t *testing.T) {
	err := &types.UnknownOperationError{Operation: "nonexistent-operation"}
	rec := Translate(err, "req-4", translateNow)

	assert.Equal(t, "ValueError", rec.ErrorType)
	assert.Equal(t, "Unknown operation: nonexistent-operation", rec.UserMessage)
	// Dispatch faults surface as server-side failures, not caller validation.
	assert.Equal(t, 500, rec.Status())
}

func TestTranslateWrappedErrorsStillClassify(t *testing.T) {
	inner := &types.ValidationError{Key: "days", Message: "analysis period must be between 1 and 30 days"}
	rec := Translate(wrap(inner), "req-5", translateNow)

	assert.Equal(t, "ValueError", rec.ErrorType)
	assert.Equal(t, 400, rec.Status())
}

func wrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ inner error }

func (w *wrapped) Error() string { return "context: " + w.inner.Error() }
func (w *wrapped) Unwrap() error { return w.inner }

func TestTranslateUnclassifiedError(t *testing.T) {
	rec := Translate(errors.New("boom"), "req-6", translateNow)

	assert.Equal(t, "InternalError", rec.ErrorType)
	assert.True(t, rec.RetrySuggested)
	assert.Equal(t, 500, rec.Status())
}

func TestTranslateUnrecognizedShape(t *testing.T) {
	rec := Translate(types.ErrUnrecognizedEventShape, "req-7", translateNow)

	assert.Equal(t, "UnrecognizedEventShape", rec.ErrorType)
	assert.Equal(t, 500, rec.Status())
}
