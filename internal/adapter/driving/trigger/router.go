package trigger

import (
	"context"
	"time"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/application/usecase"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

// HandlerFunc is the shape every tool handler shares.
type HandlerFunc func(ctx context.Context, params entity.Params, requestID string) (any, error)

// Router holds the static operation table and times every dispatch.
type Router struct {
	routes   map[string]HandlerFunc
	recorder *audit.Recorder
}

func NewRouter(costUC *usecase.CostUseCase, invUC *usecase.InventoryUseCase, secUC *usecase.SecurityUseCase, recorder *audit.Recorder) *Router {
	return &Router{
		routes: map[string]HandlerFunc{
			"getCostAnalysis":       costUC.GetCostAnalysis,
			"getIdleResources":      costUC.GetIdleResources,
			"getResourceInventory":  invUC.GetResourceInventory,
			"getResourceDetails":    invUC.GetResourceDetails,
			"getResourceHealth":     invUC.GetResourceHealth,
			"getSecurityAssessment": secUC.GetSecurityAssessment,
			"checkEncryptionStatus": secUC.CheckEncryptionStatus,
		},
		recorder: recorder,
	}
}

// Operations returns the canonical operation names the router knows about.
func (r *Router) Operations() []string {
	ops := make([]string, 0, len(r.routes))
	for op := range r.routes {
		ops = append(ops, op)
	}
	return ops
}

// Dispatch runs the handler registered for the request's operation. Every
// dispatch is timed and reported to the audit recorder, success or not.
func (r *Router) Dispatch(ctx context.Context, req entity.CanonicalRequest) (any, error) {
	handler, ok := r.routes[req.Operation]
	if !ok {
		return nil, &types.UnknownOperationError{Operation: req.Operation}
	}

	start := time.Now()
	result, err := handler(ctx, req.Params, req.Correlation.RequestID)
	r.recorder.ToolInvoked(req.Correlation.RequestID, req.Operation, req.Params, time.Since(start), err == nil)
	return result, err
}
