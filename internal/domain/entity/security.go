package entity

// Security finding severities.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// SecurityFinding is a single security issue discovered during assessment.
type SecurityFinding struct {
	Title          string `json:"title"`
	Severity       string `json:"severity"`
	ResourceID     string `json:"resource_id"`
	ResourceType   string `json:"resource_type"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// SecurityAssessment is the result of a security posture scan.
type SecurityAssessment struct {
	Region          string            `json:"region"`
	AssessmentType  string            `json:"assessment_type"`
	Findings        []SecurityFinding `json:"findings"`
	TotalFindings   int               `json:"total_findings"`
	RiskScore       int               `json:"risk_score"`
	Recommendations []string          `json:"recommendations"`
	AssessmentDate  string            `json:"assessment_date"`
}

// EncryptionStatus is the at-rest encryption state of one storage resource.
type EncryptionStatus struct {
	ResourceID   string `json:"resource_id"`
	ResourceType string `json:"resource_type"`
	Encrypted    bool   `json:"encrypted"`
	KMSKeyID     string `json:"kms_key_id,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// EncryptionReport aggregates encryption status across storage resources.
type EncryptionReport struct {
	ResourceType          string             `json:"resource_type"`
	Region                string             `json:"region"`
	Resources             []EncryptionStatus `json:"resources"`
	TotalResources        int                `json:"total_resources"`
	EncryptedCount        int                `json:"encrypted_count"`
	CompliancePercentage  float64            `json:"compliance_percentage"`
	CheckedAt             string             `json:"checked_at"`
}
