// Package audit emits the structured lifecycle events of every invocation:
// request received, tool invoked, external call made, response sent, error
// occurred. Events are append-only observations correlated by request ID;
// emitting one never affects the request being observed.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Event kinds.
const (
	EventRequestReceived = "REQUEST_RECEIVED"
	EventToolInvocation  = "TOOL_INVOCATION"
	EventAWSAPICall      = "AWS_API_CALL"
	EventResponseSent    = "RESPONSE_SENT"
	EventErrorOccurred   = "ERROR_OCCURRED"
	EventSecurityCheck   = "SECURITY_CHECK"
	EventCostAnalysis    = "COST_ANALYSIS"
	EventResourceAccess  = "RESOURCE_ACCESS"
)

var sensitiveKeyParts = []string{"password", "secret", "key", "token", "credential"}

type ctxKey struct{}

// WithRequestID stores the request ID in the context for driven adapters.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestIDFromContext returns the stored request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Recorder writes audit events through a dedicated structured logger.
type Recorder struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewRecorder creates a Recorder on top of the given base logger.
func NewRecorder(base zerolog.Logger) *Recorder {
	return &Recorder{
		logger: base.With().Str("log_kind", "audit").Logger(),
		now:    time.Now,
	}
}

// WithClock overrides the recorder's clock, for tests.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

func (r *Recorder) event(kind, requestID string) *zerolog.Event {
	return r.logger.Info().
		Str("event_type", kind).
		Str("request_id", requestID).
		Str("timestamp", r.now().UTC().Format(time.RFC3339))
}

// RequestReceived records an inbound request before dispatch.
func (r *Recorder) RequestReceived(requestID, eventSource, operation string, params map[string]any) {
	r.event(EventRequestReceived, requestID).
		Str("event_source", eventSource).
		Str("operation", operation).
		Interface("parameters", Sanitize(params)).
		Msg("audit request")
}

// ToolInvoked records one tool dispatch with its timing and outcome.
func (r *Recorder) ToolInvoked(requestID, tool string, params map[string]any, elapsed time.Duration, success bool) {
	ms := float64(elapsed.Microseconds()) / 1000
	r.event(EventToolInvocation, requestID).
		Str("tool_name", tool).
		Interface("parameters", Sanitize(params)).
		Float64("execution_time_ms", ms).
		Bool("success", success).
		Str("execution_time_category", ExecutionTimeCategory(elapsed)).
		Bool("meets_sla", elapsed < 15*time.Second).
		Msg("audit tool")
}

// ExternalCall records one call to an external collaborator API.
func (r *Recorder) ExternalCall(requestID, service, operation, region string, success bool, errorCode string) {
	ev := r.event(EventAWSAPICall, requestID).
		Str("aws_service", service).
		Str("aws_operation", operation).
		Str("aws_region", region).
		Bool("success", success)
	if errorCode != "" {
		ev = ev.Str("error_code", errorCode)
	}
	ev.Msg("audit aws call")
}

// ResponseSent records the outbound response on the success path.
func (r *Recorder) ResponseSent(requestID, operation string, responseBytes int, elapsed time.Duration, success bool) {
	r.event(EventResponseSent, requestID).
		Str("operation", operation).
		Int("response_size_bytes", responseBytes).
		Float64("processing_time_ms", float64(elapsed.Microseconds())/1000).
		Bool("success", success).
		Str("response_size_category", responseSizeCategory(responseBytes)).
		Msg("audit response")
}

// ErrorOccurred records a translated fault on the error path.
func (r *Recorder) ErrorOccurred(requestID, errorType, errorCode, operation, severity string) {
	ev := r.event(EventErrorOccurred, requestID).
		Str("error_type", errorType).
		Str("operation", operation).
		Str("severity", severity).
		Bool("alert_required", severity == "error" || severity == "critical")
	if errorCode != "" {
		ev = ev.Str("error_code", errorCode)
	}
	ev.Msg("audit error")
}

// CostAnalysis records the business summary of a cost analysis.
func (r *Recorder) CostAnalysis(requestID, timePeriod string, totalCost float64, currency string, insights int) {
	r.event(EventCostAnalysis, requestID).
		Str("time_period", timePeriod).
		Float64("total_cost", totalCost).
		Str("currency", currency).
		Int("optimization_opportunities", insights).
		Msg("audit cost analysis")
}

// SecurityCheck records the business summary of a security assessment.
func (r *Recorder) SecurityCheck(requestID, checkType, scope string, findings, riskScore int) {
	r.event(EventSecurityCheck, requestID).
		Str("check_type", checkType).
		Str("scope", scope).
		Int("findings_count", findings).
		Int("risk_score", riskScore).
		Bool("high_risk_detected", riskScore > 70).
		Msg("audit security check")
}

// ResourceAccess records which resource types and regions a scan touched.
func (r *Recorder) ResourceAccess(requestID, resourceType string, count int, regions []string) {
	r.event(EventResourceAccess, requestID).
		Str("resource_type", resourceType).
		Int("resource_count", count).
		Strs("regions_accessed", regions).
		Msg("audit resource access")
}

// Sanitize replaces values whose key name matches a sensitive pattern with a
// redaction marker before logging.
func Sanitize(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		lower := strings.ToLower(k)
		redacted := false
		for _, part := range sensitiveKeyParts {
			if strings.Contains(lower, part) {
				redacted = true
				break
			}
		}
		if redacted {
			out[k] = "[REDACTED]"
		} else {
			out[k] = v
		}
	}
	return out
}

// ExecutionTimeCategory buckets a duration for dashboarding.
func ExecutionTimeCategory(d time.Duration) string {
	switch {
	case d < time.Second:
		return "fast"
	case d < 5*time.Second:
		return "normal"
	case d < 15*time.Second:
		return "slow"
	default:
		return "very_slow"
	}
}

func responseSizeCategory(size int) string {
	switch {
	case size < 1024:
		return "small"
	case size < 10*1024:
		return "medium"
	case size < 100*1024:
		return "large"
	default:
		return "very_large"
	}
}
