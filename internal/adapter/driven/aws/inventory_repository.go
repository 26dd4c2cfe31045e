package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/domain/repository"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

// InventoryRepositoryImpl lists, describes and measures resources across the
// supported services.
type InventoryRepositoryImpl struct {
	clients  *ClientFactory
	recorder *audit.Recorder
}

func NewInventoryRepository(clients *ClientFactory, recorder *audit.Recorder) repository.InventoryRepository {
	return &InventoryRepositoryImpl{clients: clients, recorder: recorder}
}

func (r *InventoryRepositoryImpl) record(ctx context.Context, service, operation, region string, err error) {
	requestID := audit.RequestIDFromContext(ctx)
	r.recorder.ExternalCall(requestID, service, operation, region, err == nil, awsErrorCode(err))
}

func (r *InventoryRepositoryImpl) GetEC2Instances(ctx context.Context, region string, runningOnly bool) ([]entity.Resource, error) {
	client, err := r.clients.getServiceClient(ctx, region, "ec2")
	if err != nil {
		return nil, err
	}
	ec2Client := client.(*ec2.Client)

	input := &ec2.DescribeInstancesInput{}
	if runningOnly {
		input.Filters = []ec2Types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		}
	}

	var resources []entity.Resource
	paginator := ec2.NewDescribeInstancesPaginator(ec2Client, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		r.record(ctx, "EC2", "DescribeInstances", region, err)
		if err != nil {
			return nil, fmt.Errorf("listing EC2 instances in %s: %w", region, err)
		}
		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				resources = append(resources, ec2Resource(instance, region))
			}
		}
	}
	return resources, nil
}

func ec2Resource(instance ec2Types.Instance, region string) entity.Resource {
	tags := make(map[string]string, len(instance.Tags))
	for _, tag := range instance.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}

	res := entity.Resource{
		ResourceID:   aws.ToString(instance.InstanceId),
		ResourceType: "EC2",
		Region:       region,
		Name:         tags["Name"],
		Tags:         tags,
		Extra: map[string]any{
			"instance_type": string(instance.InstanceType),
		},
	}
	if instance.State != nil {
		res.State = string(instance.State.Name)
	}
	if instance.LaunchTime != nil {
		res.CreatedAt = instance.LaunchTime.UTC().Format(time.RFC3339)
	}
	if instance.Placement != nil {
		res.Extra["availability_zone"] = aws.ToString(instance.Placement.AvailabilityZone)
	}
	if instance.PrivateIpAddress != nil {
		res.Extra["private_ip"] = aws.ToString(instance.PrivateIpAddress)
	}
	if instance.PublicIpAddress != nil {
		res.Extra["public_ip"] = aws.ToString(instance.PublicIpAddress)
	}
	return res
}

func (r *InventoryRepositoryImpl) GetS3Buckets(ctx context.Context) ([]entity.Resource, error) {
	client, err := r.clients.getServiceClient(ctx, "", "s3")
	if err != nil {
		return nil, err
	}
	s3Client := client.(*s3.Client)

	output, err := s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	r.record(ctx, "S3", "ListBuckets", "global", err)
	if err != nil {
		return nil, fmt.Errorf("listing S3 buckets: %w", err)
	}

	resources := make([]entity.Resource, 0, len(output.Buckets))
	for _, bucket := range output.Buckets {
		res := entity.Resource{
			ResourceID:   aws.ToString(bucket.Name),
			ResourceType: "S3",
			Region:       "global",
			Name:         aws.ToString(bucket.Name),
		}
		if bucket.CreationDate != nil {
			res.CreatedAt = bucket.CreationDate.UTC().Format(time.RFC3339)
		}
		resources = append(resources, res)
	}
	return resources, nil
}

func (r *InventoryRepositoryImpl) GetRDSInstances(ctx context.Context, region string) ([]entity.Resource, error) {
	client, err := r.clients.getServiceClient(ctx, region, "rds")
	if err != nil {
		return nil, err
	}
	rdsClient := client.(*rds.Client)

	var resources []entity.Resource
	paginator := rds.NewDescribeDBInstancesPaginator(rdsClient, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		r.record(ctx, "RDS", "DescribeDBInstances", region, err)
		if err != nil {
			return nil, fmt.Errorf("listing RDS instances in %s: %w", region, err)
		}
		for _, db := range output.DBInstances {
			res := entity.Resource{
				ResourceID:   aws.ToString(db.DBInstanceIdentifier),
				ResourceType: "RDS",
				Region:       region,
				State:        aws.ToString(db.DBInstanceStatus),
				Name:         aws.ToString(db.DBInstanceIdentifier),
				Extra: map[string]any{
					"engine":         aws.ToString(db.Engine),
					"instance_class": aws.ToString(db.DBInstanceClass),
					"multi_az":       aws.ToBool(db.MultiAZ),
				},
			}
			if db.AllocatedStorage != nil {
				res.Extra["allocated_storage_gb"] = int(*db.AllocatedStorage)
			}
			if db.InstanceCreateTime != nil {
				res.CreatedAt = db.InstanceCreateTime.UTC().Format(time.RFC3339)
			}
			resources = append(resources, res)
		}
	}
	return resources, nil
}

func (r *InventoryRepositoryImpl) GetLambdaFunctions(ctx context.Context, region string) ([]entity.Resource, error) {
	client, err := r.clients.getServiceClient(ctx, region, "lambda")
	if err != nil {
		return nil, err
	}
	lambdaClient := client.(*lambda.Client)

	var resources []entity.Resource
	paginator := lambda.NewListFunctionsPaginator(lambdaClient, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		r.record(ctx, "Lambda", "ListFunctions", region, err)
		if err != nil {
			return nil, fmt.Errorf("listing Lambda functions in %s: %w", region, err)
		}
		for _, fn := range output.Functions {
			res := entity.Resource{
				ResourceID:   aws.ToString(fn.FunctionName),
				ResourceType: "LAMBDA",
				Region:       region,
				Name:         aws.ToString(fn.FunctionName),
				CreatedAt:    aws.ToString(fn.LastModified),
				Extra: map[string]any{
					"runtime": string(fn.Runtime),
				},
			}
			if fn.MemorySize != nil {
				res.Extra["memory_mb"] = int(*fn.MemorySize)
			}
			if fn.Timeout != nil {
				res.Extra["timeout_seconds"] = int(*fn.Timeout)
			}
			resources = append(resources, res)
		}
	}
	return resources, nil
}

// DescribeResource returns the raw per-resource detail for a single
// identifier. Unsupported types are caller input error.
func (r *InventoryRepositoryImpl) DescribeResource(ctx context.Context, resourceType, resourceID, region string) (map[string]any, error) {
	switch resourceType {
	case "EC2":
		return r.describeEC2Instance(ctx, resourceID, region)
	case "S3":
		return r.describeS3Bucket(ctx, resourceID)
	case "RDS":
		return r.describeRDSInstance(ctx, resourceID, region)
	case "LAMBDA":
		return r.describeLambdaFunction(ctx, resourceID, region)
	default:
		return nil, &types.ValidationError{Key: "resource_type", Message: "must be one of: EC2, S3, RDS, LAMBDA"}
	}
}

func (r *InventoryRepositoryImpl) describeEC2Instance(ctx context.Context, instanceID, region string) (map[string]any, error) {
	client, err := r.clients.getServiceClient(ctx, region, "ec2")
	if err != nil {
		return nil, err
	}
	ec2Client := client.(*ec2.Client)

	output, err := ec2Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	r.record(ctx, "EC2", "DescribeInstances", region, err)
	if err != nil {
		return nil, err
	}
	if len(output.Reservations) == 0 || len(output.Reservations[0].Instances) == 0 {
		return nil, &types.ValidationError{Key: "resource_id", Message: fmt.Sprintf("instance %s not found", instanceID)}
	}

	instance := output.Reservations[0].Instances[0]
	res := ec2Resource(instance, region)
	details := map[string]any{
		"instance_id": res.ResourceID,
		"state":       res.State,
		"launch_time": res.CreatedAt,
		"tags":        res.Tags,
	}
	for k, v := range res.Extra {
		details[k] = v
	}
	if instance.VpcId != nil {
		details["vpc_id"] = aws.ToString(instance.VpcId)
	}
	if instance.SubnetId != nil {
		details["subnet_id"] = aws.ToString(instance.SubnetId)
	}
	return details, nil
}

func (r *InventoryRepositoryImpl) describeS3Bucket(ctx context.Context, bucket string) (map[string]any, error) {
	client, err := r.clients.getServiceClient(ctx, "", "s3")
	if err != nil {
		return nil, err
	}
	s3Client := client.(*s3.Client)

	details := map[string]any{"bucket_name": bucket}

	location, err := s3Client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: aws.String(bucket)})
	r.record(ctx, "S3", "GetBucketLocation", "global", err)
	if err != nil {
		return nil, err
	}
	bucketRegion := string(location.LocationConstraint)
	if bucketRegion == "" {
		bucketRegion = "us-east-1"
	}
	details["region"] = bucketRegion

	if versioning, verr := s3Client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(bucket)}); verr == nil {
		details["versioning"] = string(versioning.Status)
	}

	return details, nil
}

func (r *InventoryRepositoryImpl) describeRDSInstance(ctx context.Context, dbID, region string) (map[string]any, error) {
	client, err := r.clients.getServiceClient(ctx, region, "rds")
	if err != nil {
		return nil, err
	}
	rdsClient := client.(*rds.Client)

	output, err := rdsClient.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(dbID),
	})
	r.record(ctx, "RDS", "DescribeDBInstances", region, err)
	if err != nil {
		return nil, err
	}
	if len(output.DBInstances) == 0 {
		return nil, &types.ValidationError{Key: "resource_id", Message: fmt.Sprintf("database %s not found", dbID)}
	}

	db := output.DBInstances[0]
	details := map[string]any{
		"db_instance_identifier": aws.ToString(db.DBInstanceIdentifier),
		"engine":                 aws.ToString(db.Engine),
		"engine_version":         aws.ToString(db.EngineVersion),
		"instance_class":         aws.ToString(db.DBInstanceClass),
		"status":                 aws.ToString(db.DBInstanceStatus),
		"multi_az":               aws.ToBool(db.MultiAZ),
		"storage_encrypted":      aws.ToBool(db.StorageEncrypted),
	}
	if db.AllocatedStorage != nil {
		details["allocated_storage_gb"] = int(*db.AllocatedStorage)
	}
	if db.Endpoint != nil {
		details["endpoint"] = aws.ToString(db.Endpoint.Address)
	}
	return details, nil
}

func (r *InventoryRepositoryImpl) describeLambdaFunction(ctx context.Context, name, region string) (map[string]any, error) {
	client, err := r.clients.getServiceClient(ctx, region, "lambda")
	if err != nil {
		return nil, err
	}
	lambdaClient := client.(*lambda.Client)

	output, err := lambdaClient.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(name),
	})
	r.record(ctx, "Lambda", "GetFunctionConfiguration", region, err)
	if err != nil {
		return nil, err
	}

	details := map[string]any{
		"function_name": aws.ToString(output.FunctionName),
		"runtime":       string(output.Runtime),
		"handler":       aws.ToString(output.Handler),
		"last_modified": aws.ToString(output.LastModified),
	}
	if output.MemorySize != nil {
		details["memory_mb"] = int(*output.MemorySize)
	}
	if output.Timeout != nil {
		details["timeout_seconds"] = int(*output.Timeout)
	}
	if output.CodeSize != 0 {
		details["code_size_bytes"] = output.CodeSize
	}
	return details, nil
}

func (r *InventoryRepositoryImpl) GetInstanceStatuses(ctx context.Context, region string) ([]entity.InstanceHealth, error) {
	client, err := r.clients.getServiceClient(ctx, region, "ec2")
	if err != nil {
		return nil, err
	}
	ec2Client := client.(*ec2.Client)

	var statuses []entity.InstanceHealth
	paginator := ec2.NewDescribeInstanceStatusPaginator(ec2Client, &ec2.DescribeInstanceStatusInput{
		IncludeAllInstances: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		r.record(ctx, "EC2", "DescribeInstanceStatus", region, err)
		if err != nil {
			return nil, fmt.Errorf("checking instance statuses in %s: %w", region, err)
		}
		for _, st := range output.InstanceStatuses {
			health := entity.InstanceHealth{
				InstanceID: aws.ToString(st.InstanceId),
			}
			if st.InstanceState != nil {
				health.State = string(st.InstanceState.Name)
			}
			if st.SystemStatus != nil {
				health.SystemStatus = string(st.SystemStatus.Status)
			}
			if st.InstanceStatus != nil {
				health.InstanceStatus = string(st.InstanceStatus.Status)
			}
			statuses = append(statuses, health)
		}
	}
	return statuses, nil
}

// GetInstanceMetrics pulls hourly CPU and network statistics for one instance
// over the trailing analysis window.
func (r *InventoryRepositoryImpl) GetInstanceMetrics(ctx context.Context, region, instanceID string, days int) (entity.InstanceMetrics, error) {
	client, err := r.clients.getServiceClient(ctx, region, "cloudwatch")
	if err != nil {
		return entity.InstanceMetrics{}, err
	}
	cwClient := client.(*cloudwatch.Client)

	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)
	dimension := cwTypes.Dimension{Name: aws.String("InstanceId"), Value: aws.String(instanceID)}

	cpu, err := cwClient.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/EC2"),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cwTypes.Dimension{dimension},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(3600),
		Statistics: []cwTypes.Statistic{cwTypes.StatisticAverage, cwTypes.StatisticMaximum},
	})
	r.record(ctx, "CloudWatch", "GetMetricStatistics", region, err)
	if err != nil {
		return entity.InstanceMetrics{}, fmt.Errorf("getting CPU metrics for %s: %w", instanceID, err)
	}

	metrics := entity.InstanceMetrics{DataPoints: len(cpu.Datapoints)}
	if len(cpu.Datapoints) > 0 {
		var sum, max float64
		for _, dp := range cpu.Datapoints {
			sum += aws.ToFloat64(dp.Average)
			if m := aws.ToFloat64(dp.Maximum); m > max {
				max = m
			}
		}
		avg := sum / float64(len(cpu.Datapoints))
		metrics.AvgCPU = &avg
		metrics.MaxCPU = &max
	}

	for metricName, target := range map[string]**float64{
		"NetworkIn":  &metrics.AvgNetworkIn,
		"NetworkOut": &metrics.AvgNetworkOut,
	} {
		out, nerr := cwClient.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/EC2"),
			MetricName: aws.String(metricName),
			Dimensions: []cwTypes.Dimension{dimension},
			StartTime:  aws.Time(start),
			EndTime:    aws.Time(end),
			Period:     aws.Int32(3600),
			Statistics: []cwTypes.Statistic{cwTypes.StatisticAverage},
		})
		if nerr != nil || len(out.Datapoints) == 0 {
			continue
		}
		var sum float64
		for _, dp := range out.Datapoints {
			sum += aws.ToFloat64(dp.Average)
		}
		avg := sum / float64(len(out.Datapoints))
		*target = &avg
	}

	return metrics, nil
}

// GetIdleLoadBalancers finds v2 load balancers with no registered targets in
// any of their target groups.
func (r *InventoryRepositoryImpl) GetIdleLoadBalancers(ctx context.Context, region string) ([]entity.IdleLoadBalancer, error) {
	client, err := r.clients.getServiceClient(ctx, region, "elbv2")
	if err != nil {
		return nil, err
	}
	elbClient := client.(*elasticloadbalancingv2.Client)

	lbs, err := elbClient.DescribeLoadBalancers(ctx, &elasticloadbalancingv2.DescribeLoadBalancersInput{})
	r.record(ctx, "ELBv2", "DescribeLoadBalancers", region, err)
	if err != nil {
		return nil, fmt.Errorf("listing load balancers in %s: %w", region, err)
	}

	var idle []entity.IdleLoadBalancer
	for _, lb := range lbs.LoadBalancers {
		arn := aws.ToString(lb.LoadBalancerArn)

		tgs, err := elbClient.DescribeTargetGroups(ctx, &elasticloadbalancingv2.DescribeTargetGroupsInput{
			LoadBalancerArn: aws.String(arn),
		})
		if err != nil || len(tgs.TargetGroups) == 0 {
			// No target groups means no traffic by definition.
			idle = append(idle, entity.IdleLoadBalancer{Name: aws.ToString(lb.LoadBalancerName), ARN: arn})
			continue
		}

		hasTargets := false
		for _, tg := range tgs.TargetGroups {
			health, herr := elbClient.DescribeTargetHealth(ctx, &elasticloadbalancingv2.DescribeTargetHealthInput{
				TargetGroupArn: tg.TargetGroupArn,
			})
			if herr != nil {
				continue
			}
			if len(health.TargetHealthDescriptions) > 0 {
				hasTargets = true
				break
			}
		}
		if !hasTargets {
			idle = append(idle, entity.IdleLoadBalancer{Name: aws.ToString(lb.LoadBalancerName), ARN: arn})
		}
	}
	return idle, nil
}

// GetUnretainedLogGroups lists log groups without a retention policy.
func (r *InventoryRepositoryImpl) GetUnretainedLogGroups(ctx context.Context, region string) ([]entity.UnretainedLogGroup, error) {
	client, err := r.clients.getServiceClient(ctx, region, "cloudwatchlogs")
	if err != nil {
		return nil, err
	}
	cwlClient := client.(*cloudwatchlogs.Client)

	var groups []entity.UnretainedLogGroup
	paginator := cloudwatchlogs.NewDescribeLogGroupsPaginator(cwlClient, &cloudwatchlogs.DescribeLogGroupsInput{
		Limit: aws.Int32(50),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		r.record(ctx, "CloudWatchLogs", "DescribeLogGroups", region, err)
		if err != nil {
			return nil, fmt.Errorf("listing log groups in %s: %w", region, err)
		}
		for _, lg := range page.LogGroups {
			if lg.RetentionInDays != nil {
				continue
			}
			groups = append(groups, entity.UnretainedLogGroup{
				Name:        aws.ToString(lg.LogGroupName),
				StoredBytes: aws.ToInt64(lg.StoredBytes),
			})
		}
	}
	return groups, nil
}
