package trigger

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dzecena/aws-ai-concierge/internal/application/apperr"
	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
)

// Orchestrator drives one invocation end to end: normalize, route, translate
// failures, and rebuild the caller's envelope. It never returns an error to
// the runtime; every fault becomes an error envelope so the caller always
// gets a well-formed response.
type Orchestrator struct {
	router    *Router
	envelopes *EnvelopeBuilder
	recorder  *audit.Recorder
	logger    zerolog.Logger
	now       func() time.Time
}

func NewOrchestrator(router *Router, envelopes *EnvelopeBuilder, recorder *audit.Recorder, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		router:    router,
		envelopes: envelopes,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Handle processes one raw event. The recover boundary converts panics into
// translated error envelopes; the audit trail gets its response-sent or
// error-occurred event on every exit path.
func (o *Orchestrator) Handle(ctx context.Context, requestID string, raw []byte) (out any) {
	start := o.now()
	corr := entity.Correlation{RequestID: requestID, Trigger: entity.TriggerGateway}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("request_id", requestID).Any("panic", r).Msg("recovered from panic")
			rec := apperr.Translate(fmt.Errorf("panic: %v", r), requestID, o.now())
			o.recorder.ErrorOccurred(requestID, rec.ErrorType, rec.AWSErrorCode, "", apperr.SeverityCritical)
			out = o.envelopes.Error(corr, rec)
		}
	}()

	req, err := Normalize(raw, requestID)
	if err != nil {
		// No shape recognized; answer in the gateway form since there is no
		// trigger context to echo.
		rec := apperr.Translate(err, requestID, o.now())
		o.recorder.ErrorOccurred(requestID, rec.ErrorType, rec.AWSErrorCode, "", rec.Severity)
		return o.envelopes.Error(corr, rec)
	}
	corr = req.Correlation

	o.recorder.RequestReceived(requestID, corr.Trigger.String(), req.Operation, audit.Sanitize(req.Params))

	if corr.Trigger == entity.TriggerLegacy {
		env := o.envelopes.Legacy("AWS AI Concierge is running")
		o.recordSent(requestID, req.Operation, env, start, true)
		return env
	}

	ctx = audit.WithRequestID(ctx, requestID)
	result, err := o.router.Dispatch(ctx, req)
	if err != nil {
		rec := apperr.Translate(err, requestID, o.now())
		o.recorder.ErrorOccurred(requestID, rec.ErrorType, rec.AWSErrorCode, req.Operation, rec.Severity)
		env := o.envelopes.Error(corr, rec)
		o.recordSent(requestID, req.Operation, env, start, false)
		return env
	}

	env, err := o.envelopes.Success(corr, req.Operation, result)
	if err != nil {
		o.logger.Error().Str("request_id", requestID).Err(err).Msg("response serialization failed")
		rec := apperr.Translate(err, requestID, o.now())
		o.recorder.ErrorOccurred(requestID, rec.ErrorType, rec.AWSErrorCode, req.Operation, rec.Severity)
		env = o.envelopes.Error(corr, rec)
		o.recordSent(requestID, req.Operation, env, start, false)
		return env
	}

	o.recordSent(requestID, req.Operation, env, start, true)
	return env
}

func (o *Orchestrator) recordSent(requestID, operation string, env any, start time.Time, success bool) {
	size := 0
	if b, err := json.Marshal(env); err == nil {
		size = len(b)
	}
	o.recorder.ResponseSent(requestID, operation, size, o.now().Sub(start), success)
}
