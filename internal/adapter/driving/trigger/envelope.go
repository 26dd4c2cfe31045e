package trigger

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/dzecena/aws-ai-concierge/internal/application/apperr"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/pkg/version"
)

const defaultMessageVersion = "1.0"

type responseMetadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type successBody struct {
	Success   bool             `json:"success"`
	Operation string           `json:"operation"`
	Data      any              `json:"data"`
	Metadata  responseMetadata `json:"metadata"`
}

type errorDetail struct {
	Message           string `json:"message"`
	Type              string `json:"type"`
	Severity          string `json:"severity"`
	RetrySuggested    bool   `json:"retry_suggested"`
	RetryDelaySeconds int    `json:"retry_delay_seconds,omitempty"`
	ActionRequired    string `json:"action_required,omitempty"`
}

type errorBody struct {
	Success  bool             `json:"success"`
	Error    errorDetail      `json:"error"`
	Metadata responseMetadata `json:"metadata"`
}

// Bedrock Agent function-call envelope.

type agentFunctionEnvelope struct {
	MessageVersion string                `json:"messageVersion"`
	Response       agentFunctionResponse `json:"response"`
}

type agentFunctionResponse struct {
	ActionGroup      string           `json:"actionGroup"`
	Function         string           `json:"function"`
	FunctionResponse functionResponse `json:"functionResponse"`
}

type functionResponse struct {
	ResponseBody map[string]textBody `json:"responseBody"`
}

type textBody struct {
	Body string `json:"body"`
}

// Bedrock Agent REST-path envelope.

type agentPathEnvelope struct {
	MessageVersion string            `json:"messageVersion"`
	Response       agentPathResponse `json:"response"`
}

type agentPathResponse struct {
	ActionGroup    string              `json:"actionGroup"`
	APIPath        string              `json:"apiPath"`
	HTTPMethod     string              `json:"httpMethod"`
	HTTPStatusCode int                 `json:"httpStatusCode"`
	ResponseBody   map[string]textBody `json:"responseBody"`
}

// API Gateway proxy envelope.

type gatewayEnvelope struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Legacy direct-invocation echo.

type legacyEnvelope struct {
	StatusCode int        `json:"statusCode"`
	Body       legacyBody `json:"body"`
}

type legacyBody struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// EnvelopeBuilder rebuilds the trigger-specific response around a tool result
// or an error record. The correlation carried through normalization decides
// the shape; for agent-path calls the apiPath goes back verbatim.
type EnvelopeBuilder struct {
	now func() time.Time
}

func NewEnvelopeBuilder() *EnvelopeBuilder {
	return &EnvelopeBuilder{now: time.Now}
}

// WithClock overrides the time source, for tests.
func (b *EnvelopeBuilder) WithClock(now func() time.Time) *EnvelopeBuilder {
	b.now = now
	return b
}

func (b *EnvelopeBuilder) metadata(requestID string) responseMetadata {
	return responseMetadata{
		RequestID: requestID,
		Timestamp: b.now().UTC().Format(time.RFC3339),
		Version:   version.Short(),
	}
}

// Success wraps a tool result in the envelope the trigger expects.
func (b *EnvelopeBuilder) Success(corr entity.Correlation, operation string, data any) (any, error) {
	body, err := json.Marshal(successBody{
		Success:   true,
		Operation: operation,
		Data:      data,
		Metadata:  b.metadata(corr.RequestID),
	})
	if err != nil {
		return nil, err
	}
	return b.wrap(corr, 200, string(body)), nil
}

// Error wraps a translated error record, mapping it to the transport status
// code for the shapes that carry one.
func (b *EnvelopeBuilder) Error(corr entity.Correlation, rec apperr.Record) any {
	body, err := json.Marshal(errorBody{
		Success: false,
		Error: errorDetail{
			Message:           rec.UserMessage,
			Type:              rec.ErrorType,
			Severity:          rec.Severity,
			RetrySuggested:    rec.RetrySuggested,
			RetryDelaySeconds: rec.RetryDelaySeconds,
			ActionRequired:    rec.ActionRequired,
		},
		Metadata: b.metadata(corr.RequestID),
	})
	if err != nil {
		// The error body is built from plain strings; marshaling it cannot
		// realistically fail, but the boundary still degrades to something.
		body = []byte(`{"success":false}`)
	}
	return b.wrap(corr, rec.Status(), string(body))
}

// Legacy builds the diagnostic echo for direct invocations.
func (b *EnvelopeBuilder) Legacy(message string) any {
	return legacyEnvelope{
		StatusCode: 200,
		Body: legacyBody{
			Message:   message,
			Timestamp: b.now().UTC().Format(time.RFC3339),
			Version:   version.Short(),
		},
	}
}

func (b *EnvelopeBuilder) wrap(corr entity.Correlation, status int, body string) any {
	switch corr.Trigger {
	case entity.TriggerAgentFunction:
		return agentFunctionEnvelope{
			MessageVersion: messageVersion(corr),
			Response: agentFunctionResponse{
				ActionGroup: corr.ActionGroup,
				Function:    corr.Function,
				FunctionResponse: functionResponse{
					ResponseBody: map[string]textBody{"TEXT": {Body: body}},
				},
			},
		}
	case entity.TriggerAgentPath:
		return agentPathEnvelope{
			MessageVersion: messageVersion(corr),
			Response: agentPathResponse{
				ActionGroup:    corr.ActionGroup,
				APIPath:        corr.APIPath,
				HTTPMethod:     corr.HTTPMethod,
				HTTPStatusCode: status,
				ResponseBody:   map[string]textBody{"application/json": {Body: body}},
			},
		}
	default:
		return gatewayEnvelope{
			StatusCode: status,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       body,
		}
	}
}

func messageVersion(corr entity.Correlation) string {
	if corr.MessageVersion != "" {
		return corr.MessageVersion
	}
	return defaultMessageVersion
}
