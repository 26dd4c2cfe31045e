package entity

// Resource is one entry in the account inventory.
type Resource struct {
	ResourceID   string            `json:"resource_id"`
	ResourceType string            `json:"resource_type"`
	Region       string            `json:"region"`
	State        string            `json:"state,omitempty"`
	Name         string            `json:"name,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	Extra        map[string]any    `json:"extra,omitempty"`
}

// ResourceInventory is the result of an inventory scan.
type ResourceInventory struct {
	ResourceType  string     `json:"resource_type"`
	Region        string     `json:"region"`
	Resources     []Resource `json:"resources"`
	TotalCount    int        `json:"total_count"`
	InventoryDate string     `json:"inventory_date"`
}

// ResourceDetails wraps the describe output for a single resource.
type ResourceDetails struct {
	ResourceID   string         `json:"resource_id"`
	ResourceType string         `json:"resource_type"`
	Region       string         `json:"region"`
	Details      map[string]any `json:"details"`
	RetrievedAt  string         `json:"retrieved_at"`
}

// InstanceHealth is the health snapshot for one EC2 instance.
type InstanceHealth struct {
	InstanceID     string  `json:"instance_id"`
	State          string  `json:"state"`
	SystemStatus   string  `json:"system_status"`
	InstanceStatus string  `json:"instance_status"`
	AvgCPUPercent  float64 `json:"avg_cpu_percent"`
	Healthy        bool    `json:"healthy"`
}

// ResourceHealthReport aggregates instance health for a region.
type ResourceHealthReport struct {
	Region         string           `json:"region"`
	Instances      []InstanceHealth `json:"instances"`
	TotalInstances int              `json:"total_instances"`
	HealthyCount   int              `json:"healthy_count"`
	CheckedAt      string           `json:"checked_at"`
}

// InstanceMetrics holds the CloudWatch utilization numbers an idle-resource
// scan is based on. Averages are nil when no datapoints exist.
type InstanceMetrics struct {
	AvgCPU        *float64
	MaxCPU        *float64
	AvgNetworkIn  *float64
	AvgNetworkOut *float64
	DataPoints    int
}

// IdleInstance is one underutilized EC2 instance with its optimization
// recommendation.
type IdleInstance struct {
	InstanceID              string            `json:"instance_id"`
	InstanceType            string            `json:"instance_type"`
	AvgCPUPercent           float64           `json:"average_cpu_utilization"`
	MaxCPUPercent           float64           `json:"max_cpu_utilization"`
	DataPoints              int               `json:"data_points"`
	LaunchTime              string            `json:"launch_time,omitempty"`
	EstimatedMonthlyCost    float64           `json:"estimated_monthly_cost"`
	PotentialMonthlySavings float64           `json:"potential_monthly_savings"`
	Recommendation          string            `json:"optimization_recommendation"`
	Confidence              string            `json:"confidence_level"`
	Tags                    map[string]string `json:"tags,omitempty"`
}

// IdleLoadBalancer is a load balancer with no registered targets.
type IdleLoadBalancer struct {
	Name string `json:"name"`
	ARN  string `json:"arn"`
}

// UnretainedLogGroup is a CloudWatch log group without a retention policy,
// accumulating storage cost indefinitely.
type UnretainedLogGroup struct {
	Name        string `json:"name"`
	StoredBytes int64  `json:"stored_bytes"`
}

// IdleResourcesReport is the full idle/waste scan result.
type IdleResourcesReport struct {
	Region                  string               `json:"region"`
	AnalysisPeriodDays      int                  `json:"analysis_period_days"`
	CPUThresholdPercent     float64              `json:"cpu_threshold_percent"`
	TotalInstancesAnalyzed  int                  `json:"total_instances_analyzed"`
	IdleInstances           []IdleInstance       `json:"idle_instances"`
	TotalIdleInstances      int                  `json:"total_idle_instances"`
	IdleLoadBalancers       []IdleLoadBalancer   `json:"idle_load_balancers"`
	UnretainedLogGroups     []UnretainedLogGroup `json:"log_groups_without_retention"`
	PotentialMonthlySavings float64              `json:"potential_monthly_savings"`
	OptimizationInsights    []string             `json:"optimization_insights"`
	Currency                string               `json:"currency"`
	AnalysisDate            string               `json:"analysis_date"`
}
