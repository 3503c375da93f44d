package repository

import (
	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration files.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
}

// CredentialStore persists what the captive portal collects.
type CredentialStore interface {
	Save(values map[string]string) error
}
