// Package config loads runtime configuration: defaults, an optional TOML,
// YAML or JSON file, and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/dzecena/aws-ai-concierge/internal/domain/repository"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

// ConfigRepositoryImpl implements repository.ConfigRepository.
type ConfigRepositoryImpl struct{}

func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile parses a TOML, YAML or JSON configuration file.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg types.Config
	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &cfg, nil
}

// Load resolves the effective configuration. A missing config file is not an
// error; environment variables win over file values.
func Load() (*types.Config, error) {
	cfg := types.DefaultConfig()

	path := os.Getenv("CONCIERGE_CONFIG")
	if path != "" {
		fileCfg, err := (&ConfigRepositoryImpl{}).LoadConfigFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		} else {
			merge(cfg, fileCfg)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func merge(dst, src *types.Config) {
	if src.ActionGroup != "" {
		dst.ActionGroup = src.ActionGroup
	}
	if src.DefaultRegion != "" {
		dst.DefaultRegion = src.DefaultRegion
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if len(src.CompliantRegions) > 0 {
		dst.CompliantRegions = src.CompliantRegions
	}
	if src.RetryMaxAttempts > 0 {
		dst.RetryMaxAttempts = src.RetryMaxAttempts
	}
}

func applyEnv(cfg *types.Config) {
	if v := os.Getenv("ACTION_GROUP_NAME"); v != "" {
		cfg.ActionGroup = v
	}
	if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
		cfg.DefaultRegion = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetryMaxAttempts = n
		}
	}
}
