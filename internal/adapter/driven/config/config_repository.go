package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

type decodeFunc func(data []byte, cfg *types.Config) error

var decoders = map[string]struct {
	name   string
	decode decodeFunc
}{
	".toml": {"TOML", func(data []byte, cfg *types.Config) error { return toml.Unmarshal(data, cfg) }},
	".yaml": {"YAML", func(data []byte, cfg *types.Config) error { return yaml.Unmarshal(data, cfg) }},
	".yml":  {"YAML", func(data []byte, cfg *types.Config) error { return yaml.Unmarshal(data, cfg) }},
	".json": {"JSON", func(data []byte, cfg *types.Config) error { return json.Unmarshal(data, cfg) }},
}

var knownReportTypes = map[string]bool{"csv": true, "json": true, "pdf": true}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
// Referências ${VAR} são expandidas a partir do ambiente antes da leitura.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))
	decoder, ok := decoders[fileExtension]
	if !ok {
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

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

	var config types.Config
	if err := decoder.decode([]byte(os.ExpandEnv(string(fileData))), &config); err != nil {
		return nil, fmt.Errorf("error parsing %s file: %w", decoder.name, err)
	}

	if err := normalizeConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return &config, nil
}

func normalizeConfig(cfg *types.Config) error {
	if cfg.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative")
	}
	if cfg.ErrorCooldown < 0 {
		return fmt.Errorf("error_cooldown must not be negative")
	}
	if cfg.LookbackDays < 0 {
		return fmt.Errorf("lookback_days must not be negative")
	}

	cfg.Marketplace = strings.ToUpper(strings.TrimSpace(cfg.Marketplace))
	cfg.DisplayBackend = strings.ToLower(strings.TrimSpace(cfg.DisplayBackend))

	for i, t := range cfg.ReportType {
		t = strings.ToLower(strings.TrimSpace(t))
		if !knownReportTypes[t] {
			return fmt.Errorf("unknown report type %q", t)
		}
		cfg.ReportType[i] = t
	}
	return nil
}
