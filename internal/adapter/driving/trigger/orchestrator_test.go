package trigger

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/application/usecase"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
)

type stubCostRepo struct {
	rows []entity.CostUsageRow
	err  error
}

func (s *stubCostRepo) GetCostAndUsage(_ context.Context, _ entity.CostQuery) ([]entity.CostUsageRow, error) {
	return s.rows, s.err
}

func (s *stubCostRepo) GetActualSpend(_ context.Context) (*entity.ActualSpend, error) {
	return nil, nil
}

func newTestOrchestrator(costRepo *stubCostRepo) *Orchestrator {
	logger := zerolog.Nop()
	recorder := audit.NewRecorder(logger)
	costUC := usecase.NewCostUseCase(costRepo, nil, recorder, logger)
	router := NewRouter(costUC, nil, nil, recorder)
	return NewOrchestrator(router, NewEnvelopeBuilder(), recorder, logger)
}

func TestHandleAgentFunctionSuccess(t *testing.T) {
	repo := &stubCostRepo{rows: []entity.CostUsageRow{
		{PeriodStart: "2025-10-01", Dimension: "Amazon EC2", Amount: decimal.NewFromFloat(42.5), Unit: "USD"},
	}}
	o := newTestOrchestrator(repo)

	raw := []byte(`{
		"messageVersion": "1.0",
		"actionGroup": "aws-ai-concierge-tools",
		"function": "getCostAnalysis",
		"parameters": [{"name": "time_period", "value": "MONTHLY"}]
	}`)

	env := o.Handle(context.Background(), "req-fn", raw)

	fn, ok := env.(agentFunctionEnvelope)
	require.True(t, ok)
	assert.Equal(t, "getCostAnalysis", fn.Response.Function)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(fn.Response.FunctionResponse.ResponseBody["TEXT"].Body), &body))
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.InDelta(t, 42.5, data["total_cost"], 0.001)
}

func TestHandleGatewayUnknownOperation(t *testing.T) {
	o := newTestOrchestrator(&stubCostRepo{})

	raw := []byte(`{"httpMethod": "POST", "path": "/nonexistent-operation", "body": "{}"}`)
	env := o.Handle(context.Background(), "req-gw", raw)

	gw, ok := env.(gatewayEnvelope)
	require.True(t, ok)
	assert.Equal(t, 500, gw.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(gw.Body), &body))
	assert.Equal(t, false, body["success"])

	detail := body["error"].(map[string]any)
	assert.Equal(t, "ValueError", detail["type"])
	assert.Contains(t, detail["message"], "Unknown operation: nonexistent-operation")
}

func TestHandleLegacyEcho(t *testing.T) {
	o := newTestOrchestrator(&stubCostRepo{})

	env := o.Handle(context.Background(), "req-legacy", []byte(`{"detail": "scheduled ping"}`))

	legacy, ok := env.(legacyEnvelope)
	require.True(t, ok)
	assert.Equal(t, 200, legacy.StatusCode)
	assert.Equal(t, "AWS AI Concierge is running", legacy.Body.Message)
	assert.NotEmpty(t, legacy.Body.Timestamp)
}

func TestHandleUnrecognizedEvent(t *testing.T) {
	o := newTestOrchestrator(&stubCostRepo{})

	env := o.Handle(context.Background(), "req-bad", []byte(`not json at all`))

	gw, ok := env.(gatewayEnvelope)
	require.True(t, ok)
	assert.Equal(t, 500, gw.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(gw.Body), &body))
	detail := body["error"].(map[string]any)
	assert.Equal(t, "UnrecognizedEventShape", detail["type"])
}

func TestHandleRecoversFromPanic(t *testing.T) {
	o := newTestOrchestrator(&stubCostRepo{})

	// getResourceInventory is wired to a nil inventory use case here, so the
	// dispatch panics; the boundary must still answer with an error envelope.
	raw := []byte(`{
		"messageVersion": "1.0",
		"actionGroup": "aws-ai-concierge-tools",
		"apiPath": "/resource-inventory",
		"httpMethod": "GET"
	}`)

	env := o.Handle(context.Background(), "req-panic", raw)
	require.NotNil(t, env)

	var body map[string]any
	switch e := env.(type) {
	case agentPathEnvelope:
		assert.Equal(t, 500, e.Response.HTTPStatusCode)
		require.NoError(t, json.Unmarshal([]byte(e.Response.ResponseBody["application/json"].Body), &body))
	case gatewayEnvelope:
		assert.Equal(t, 500, e.StatusCode)
		require.NoError(t, json.Unmarshal([]byte(e.Body), &body))
	default:
		t.Fatalf("unexpected envelope type %T", env)
	}
	assert.Equal(t, false, body["success"])
}
