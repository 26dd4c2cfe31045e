// Package aws implements the domain repositories against the AWS SDK. All
// access is read-only, and clients are cached per service and region so
// repeated invocations in a warm execution environment reuse connections.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ClientFactory builds and caches SDK clients keyed by region and service.
// The cache holds no request state, so one factory is safe to share across
// concurrent invocations.
type ClientFactory struct {
	defaultRegion string
	retryAttempts int

	cfgCache    map[string]aws.Config
	clientCache map[string]any
	mu          sync.Mutex
}

func NewClientFactory(defaultRegion string, retryAttempts int) *ClientFactory {
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	return &ClientFactory{
		defaultRegion: defaultRegion,
		retryAttempts: retryAttempts,
		cfgCache:      make(map[string]aws.Config),
		clientCache:   make(map[string]any),
	}
}

func (f *ClientFactory) getAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		region = f.defaultRegion
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if cfg, ok := f.cfgCache[region]; ok {
		return cfg, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryMaxAttempts(f.retryAttempts),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for region %s: %w", region, err)
	}

	f.cfgCache[region] = cfg
	return cfg, nil
}

func (f *ClientFactory) getServiceClient(ctx context.Context, region, service string) (any, error) {
	// Cost Explorer, Budgets and STS are global endpoints served out of
	// us-east-1 regardless of the requested region.
	switch service {
	case "costexplorer", "budgets", "sts":
		region = "us-east-1"
	}
	if region == "" {
		region = f.defaultRegion
	}

	cacheKey := fmt.Sprintf("%s-%s", region, service)

	f.mu.Lock()
	if client, ok := f.clientCache[cacheKey]; ok {
		f.mu.Unlock()
		return client, nil
	}
	f.mu.Unlock()

	cfg, err := f.getAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}

	var client any
	switch service {
	case "sts":
		client = sts.NewFromConfig(cfg)
	case "ec2":
		client = ec2.NewFromConfig(cfg)
	case "s3":
		client = s3.NewFromConfig(cfg)
	case "rds":
		client = rds.NewFromConfig(cfg)
	case "lambda":
		client = lambda.NewFromConfig(cfg)
	case "costexplorer":
		client = costexplorer.NewFromConfig(cfg)
	case "budgets":
		client = budgets.NewFromConfig(cfg)
	case "cloudwatch":
		client = cloudwatch.NewFromConfig(cfg)
	case "cloudwatchlogs":
		client = cloudwatchlogs.NewFromConfig(cfg)
	case "elbv2":
		client = elasticloadbalancingv2.NewFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	f.mu.Lock()
	f.clientCache[cacheKey] = client
	f.mu.Unlock()

	return client, nil
}

// AccountID resolves the caller's account via STS.
func (f *ClientFactory) AccountID(ctx context.Context) (string, error) {
	client, err := f.getServiceClient(ctx, "", "sts")
	if err != nil {
		return "", err
	}
	stsClient := client.(*sts.Client)

	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting caller identity: %w", err)
	}
	return *result.Account, nil
}
