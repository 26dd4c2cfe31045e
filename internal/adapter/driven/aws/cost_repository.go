package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/smithy-go"
	"github.com/shopspring/decimal"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/domain/repository"
)

// CostRepositoryImpl reads cost data from Cost Explorer, with AWS Budgets as
// the coarse secondary source.
type CostRepositoryImpl struct {
	clients  *ClientFactory
	recorder *audit.Recorder
}

func NewCostRepository(clients *ClientFactory, recorder *audit.Recorder) repository.CostRepository {
	return &CostRepositoryImpl{clients: clients, recorder: recorder}
}

// GetCostAndUsage runs one grouped query against Cost Explorer, following
// pagination to the end.
func (r *CostRepositoryImpl) GetCostAndUsage(ctx context.Context, q entity.CostQuery) ([]entity.CostUsageRow, error) {
	client, err := r.clients.getServiceClient(ctx, "", "costexplorer")
	if err != nil {
		return nil, err
	}
	ceClient := client.(*costexplorer.Client)

	granularity := ceTypes.GranularityDaily
	if q.Granularity == entity.GranularityMonthly {
		granularity = ceTypes.GranularityMonthly
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(q.Period.StartDate()),
			End:   aws.String(q.Period.EndDate()),
		},
		Granularity: granularity,
		Metrics:     []string{"UnblendedCost", "UsageQuantity"},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String(q.GroupBy)},
		},
	}

	var rows []entity.CostUsageRow
	for {
		result, err := ceClient.GetCostAndUsage(ctx, input)
		r.record(ctx, "CostExplorer", "GetCostAndUsage", err)
		if err != nil {
			return nil, fmt.Errorf("cost and usage query failed: %w", err)
		}

		for _, period := range result.ResultsByTime {
			periodStart := aws.ToString(period.TimePeriod.Start)
			for _, group := range period.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				row := entity.CostUsageRow{
					PeriodStart: periodStart,
					Dimension:   group.Keys[0],
				}
				if m, ok := group.Metrics["UnblendedCost"]; ok {
					row.Amount = parseDecimal(m.Amount)
				}
				if m, ok := group.Metrics["UsageQuantity"]; ok {
					row.Usage = parseDecimal(m.Amount)
					row.Unit = aws.ToString(m.Unit)
				}
				rows = append(rows, row)
			}
		}

		if result.NextPageToken == nil {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	return rows, nil
}

// GetActualSpend pulls the account-level actual spend from the first budget
// that carries one. Any fault here means "no figure available", never an
// error: budgets are optional account configuration.
func (r *CostRepositoryImpl) GetActualSpend(ctx context.Context) (*entity.ActualSpend, error) {
	accountID, err := r.clients.AccountID(ctx)
	if err != nil {
		r.record(ctx, "STS", "GetCallerIdentity", err)
		return nil, nil
	}

	client, err := r.clients.getServiceClient(ctx, "", "budgets")
	if err != nil {
		return nil, nil
	}
	budgetsClient := client.(*budgets.Client)

	result, err := budgetsClient.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(accountID),
	})
	r.record(ctx, "Budgets", "DescribeBudgets", err)
	if err != nil {
		return nil, nil
	}

	for _, budget := range result.Budgets {
		if budget.CalculatedSpend == nil || budget.CalculatedSpend.ActualSpend == nil {
			continue
		}
		amount := parseDecimal(budget.CalculatedSpend.ActualSpend.Amount)
		if !amount.IsPositive() {
			continue
		}
		spend := &entity.ActualSpend{
			Amount:   amount,
			Currency: aws.ToString(budget.CalculatedSpend.ActualSpend.Unit),
			Budget:   aws.ToString(budget.BudgetName),
		}
		if spend.Currency == "" {
			spend.Currency = "USD"
		}
		return spend, nil
	}

	return nil, nil
}

func (r *CostRepositoryImpl) record(ctx context.Context, service, operation string, err error) {
	requestID := audit.RequestIDFromContext(ctx)
	r.recorder.ExternalCall(requestID, service, operation, "us-east-1", err == nil, awsErrorCode(err))
}

func parseDecimal(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func awsErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
