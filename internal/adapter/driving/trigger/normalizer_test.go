package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

func TestNormalizeAgentFunction(t *testing.T) {
	raw := []byte(`{
		"messageVersion": "1.0",
		"actionGroup": "aws-ai-concierge-tools",
		"function": "getCostAnalysis",
		"parameters": [
			{"name": "time_period", "value": "MONTHLY"},
			{"name": "granularity", "value": "DAILY"}
		]
	}`)

	req, err := Normalize(raw, "req-1")
	require.NoError(t, err)

	assert.Equal(t, entity.TriggerAgentFunction, req.Correlation.Trigger)
	assert.Equal(t, "getCostAnalysis", req.Operation)
	assert.Equal(t, "MONTHLY", req.Params.String("time_period", ""))
	assert.Equal(t, "DAILY", req.Params.String("granularity", ""))
	assert.Equal(t, "aws-ai-concierge-tools", req.Correlation.ActionGroup)
	assert.Equal(t, "1.0", req.Correlation.MessageVersion)
	assert.Equal(t, "req-1", req.Correlation.RequestID)
}

func TestNormalizeAgentPath(t *testing.T) {
	raw := []byte(`{
		"actionGroup": "aws-ai-concierge-tools",
		"apiPath": "/cost-analysis",
		"httpMethod": "POST",
		"parameters": [{"name": "time_period", "value": "DAILY"}]
	}`)

	req, err := Normalize(raw, "req-2")
	require.NoError(t, err)

	assert.Equal(t, entity.TriggerAgentPath, req.Correlation.Trigger)
	assert.Equal(t, "getCostAnalysis", req.Operation)
	assert.Equal(t, "/cost-analysis", req.Correlation.APIPath)
	assert.Equal(t, "POST", req.Correlation.HTTPMethod)
}

func TestNormalizeAgentFunctionWinsOverPath(t *testing.T) {
	// Both markers present: the function shape takes priority.
	raw := []byte(`{
		"actionGroup": "tools",
		"function": "getResourceHealth",
		"apiPath": "/cost-analysis"
	}`)

	req, err := Normalize(raw, "req-3")
	require.NoError(t, err)
	assert.Equal(t, entity.TriggerAgentFunction, req.Correlation.Trigger)
	assert.Equal(t, "getResourceHealth", req.Operation)
}

func TestNormalizeGateway(t *testing.T) {
	raw := []byte(`{
		"httpMethod": "POST",
		"path": "/security-assessment",
		"body": "{\"assessment_type\": \"COMPREHENSIVE\", \"region\": \"eu-west-1\"}"
	}`)

	req, err := Normalize(raw, "req-4")
	require.NoError(t, err)

	assert.Equal(t, entity.TriggerGateway, req.Correlation.Trigger)
	assert.Equal(t, "getSecurityAssessment", req.Operation)
	assert.Equal(t, "COMPREHENSIVE", req.Params.String("assessment_type", ""))
	assert.Equal(t, "eu-west-1", req.Params.String("region", ""))
}

func TestNormalizeGatewayEmptyBody(t *testing.T) {
	raw := []byte(`{"httpMethod": "POST", "path": "/idle-resources", "body": ""}`)

	req, err := Normalize(raw, "req-5")
	require.NoError(t, err)
	assert.Equal(t, "getIdleResources", req.Operation)
	assert.Empty(t, req.Params)
}

func TestNormalizeGatewayMalformedBody(t *testing.T) {
	raw := []byte(`{"httpMethod": "POST", "path": "/cost-analysis", "body": "{not json"}`)

	_, err := Normalize(raw, "req-6")

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "body", verr.Key)
}

func TestNormalizeGatewayUnknownPathFallsThrough(t *testing.T) {
	raw := []byte(`{"httpMethod": "POST", "path": "/nonexistent-operation", "body": "{}"}`)

	req, err := Normalize(raw, "req-7")
	require.NoError(t, err)
	assert.Equal(t, "nonexistent-operation", req.Operation)
}

func TestNormalizeLegacy(t *testing.T) {
	raw := []byte(`{"detail": {"source": "scheduled-task"}}`)

	req, err := Normalize(raw, "req-8")
	require.NoError(t, err)
	assert.Equal(t, entity.TriggerLegacy, req.Correlation.Trigger)
	assert.Empty(t, req.Operation)
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := Normalize([]byte(`not an event`), "req-9")
	assert.ErrorIs(t, err, types.ErrUnrecognizedEventShape)
}

func TestPathTableCoversEveryRoutedOperation(t *testing.T) {
	wantOps := map[string]string{
		"/cost-analysis":       "getCostAnalysis",
		"/idle-resources":      "getIdleResources",
		"/resource-inventory":  "getResourceInventory",
		"/resource-details":    "getResourceDetails",
		"/resource-health":     "getResourceHealth",
		"/security-assessment": "getSecurityAssessment",
		"/encryption-status":   "checkEncryptionStatus",
	}
	assert.Equal(t, wantOps, pathOperations)

	router := NewRouter(nil, nil, nil, nil)
	for _, op := range pathOperations {
		assert.Contains(t, router.Operations(), op)
	}
}
