package repository

import (
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

// ConfigRepository defines the interface for loading service configuration.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
}
