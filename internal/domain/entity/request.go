package entity

// TriggerKind identifies which of the four recognized invocation shapes
// produced the current event.
type TriggerKind int

const (
	// TriggerAgentFunction is a Bedrock Agent "function call" event
	// (actionGroup + function).
	TriggerAgentFunction TriggerKind = iota
	// TriggerAgentPath is a Bedrock Agent "REST-path" event
	// (actionGroup + apiPath, no function).
	TriggerAgentPath
	// TriggerGateway is an API Gateway proxy event (httpMethod/requestContext
	// with a JSON-string body).
	TriggerGateway
	// TriggerLegacy is anything else: a direct invocation answered with a
	// diagnostic echo, never routed to a tool.
	TriggerLegacy
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerAgentFunction:
		return "bedrock_function"
	case TriggerAgentPath:
		return "bedrock_agent"
	case TriggerGateway:
		return "api_gateway"
	default:
		return "direct"
	}
}

// Correlation carries request identity and enough of the raw trigger context
// to rebuild the caller's envelope on the way out.
type Correlation struct {
	RequestID      string
	Trigger        TriggerKind
	ActionGroup    string
	APIPath        string
	Function       string
	HTTPMethod     string
	MessageVersion string
}

// CanonicalRequest is the normalized form of an inbound event: one operation
// name, one parameter map, one correlation context. Built once per invocation
// and never mutated afterwards.
type CanonicalRequest struct {
	Operation   string
	Params      Params
	Correlation Correlation
}
