// Package trigger turns the raw Lambda event into a canonical request,
// dispatches it to the matching tool, and rebuilds the caller's envelope on
// the way out. It recognizes four event shapes: Bedrock Agent function calls,
// Bedrock Agent REST-path calls, API Gateway proxy requests, and legacy
// direct invocations.
package trigger

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

// pathOperations maps REST paths to canonical operation names. Agent-path and
// gateway events share this table.
var pathOperations = map[string]string{
	"/cost-analysis":       "getCostAnalysis",
	"/idle-resources":      "getIdleResources",
	"/resource-inventory":  "getResourceInventory",
	"/resource-details":    "getResourceDetails",
	"/resource-health":     "getResourceHealth",
	"/security-assessment": "getSecurityAssessment",
	"/encryption-status":   "checkEncryptionStatus",
}

type rawParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// rawEvent is the superset of fields across all recognized shapes. Presence
// of marker fields decides the shape, so absent fields just stay zero.
type rawEvent struct {
	MessageVersion string          `json:"messageVersion"`
	ActionGroup    string          `json:"actionGroup"`
	Function       string          `json:"function"`
	APIPath        string          `json:"apiPath"`
	HTTPMethod     string          `json:"httpMethod"`
	Path           string          `json:"path"`
	Parameters     []rawParameter  `json:"parameters"`
	RequestContext map[string]any  `json:"requestContext"`
	Body           string          `json:"body"`
}

// Normalize classifies a raw event into a CanonicalRequest. Shape predicates
// are checked in priority order because permissive decoders let shapes
// overlap: agent-function first, then agent-path, then gateway, then legacy.
// An event that is not even a JSON object fails with
// types.ErrUnrecognizedEventShape.
func Normalize(raw []byte, requestID string) (entity.CanonicalRequest, error) {
	var ev rawEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return entity.CanonicalRequest{}, types.ErrUnrecognizedEventShape
	}

	corr := entity.Correlation{
		RequestID:      requestID,
		ActionGroup:    ev.ActionGroup,
		APIPath:        ev.APIPath,
		Function:       ev.Function,
		HTTPMethod:     ev.HTTPMethod,
		MessageVersion: ev.MessageVersion,
	}

	switch {
	case ev.Function != "" && ev.ActionGroup != "":
		corr.Trigger = entity.TriggerAgentFunction
		return entity.CanonicalRequest{
			Operation:   ev.Function,
			Params:      parameterMap(ev.Parameters),
			Correlation: corr,
		}, nil

	case ev.APIPath != "" && ev.ActionGroup != "":
		corr.Trigger = entity.TriggerAgentPath
		return entity.CanonicalRequest{
			Operation:   operationForPath(ev.APIPath),
			Params:      parameterMap(ev.Parameters),
			Correlation: corr,
		}, nil

	case ev.HTTPMethod != "" || ev.RequestContext != nil:
		corr.Trigger = entity.TriggerGateway
		params, err := gatewayParams(ev.Body)
		if err != nil {
			return entity.CanonicalRequest{}, err
		}
		return entity.CanonicalRequest{
			Operation:   operationForPath(ev.Path),
			Params:      params,
			Correlation: corr,
		}, nil

	default:
		corr.Trigger = entity.TriggerLegacy
		return entity.CanonicalRequest{Correlation: corr}, nil
	}
}

// operationForPath resolves a REST path through the lookup table. An unknown
// path falls through as the bare path segment so the router reports it by
// name.
func operationForPath(path string) string {
	if op, ok := pathOperations[path]; ok {
		return op
	}
	return strings.TrimLeft(path, "/")
}

func parameterMap(params []rawParameter) entity.Params {
	out := make(entity.Params, len(params))
	for _, p := range params {
		out[p.Name] = p.Value
	}
	return out
}

// gatewayParams parses the JSON-string body exactly once. An empty body is an
// empty parameter map; a malformed body is caller input error, not a crash.
func gatewayParams(body string) (entity.Params, error) {
	if strings.TrimSpace(body) == "" {
		return entity.Params{}, nil
	}
	var out entity.Params
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, &types.ValidationError{Key: "body", Message: "request body is not valid JSON"}
	}
	return out, nil
}
