package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
)

// Settings é tudo o que o processo lê do ambiente na partida.
type Settings struct {
	Amazon  AmazonSettings
	Tracker TrackerSettings
	Display DisplaySettings
	Portal  PortalSettings
	Log     LogSettings
}

type AmazonSettings struct {
	AppID              string        `envconfig:"LED_SALES_APP_ID"`
	AppSecret          string        `envconfig:"LED_SALES_APP_SECRET"`
	RefreshToken       string        `envconfig:"LED_SALES_REFRESH_TOKEN"`
	EarlyRefreshMargin time.Duration `envconfig:"LED_SALES_EARLY_REFRESH_MARGIN" default:"60s"`
	RoleARN            string        `envconfig:"LED_SALES_ROLE_ARN"`
	AWSProfile         string        `envconfig:"LED_SALES_AWS_PROFILE"`
}

type TrackerSettings struct {
	Marketplace    string        `envconfig:"LED_SALES_MARKETPLACE" default:"US"`
	RefreshSeconds int           `envconfig:"LED_SALES_REFRESH_INTERVAL" default:"300"`
	ErrorCooldown  time.Duration `envconfig:"LED_SALES_ERROR_COOLDOWN" default:"30s"`
	Timezone       string        `envconfig:"LED_SALES_TIMEZONE" default:"America/Los_Angeles"`
	LookbackDays   int           `envconfig:"LED_SALES_LOOKBACK_DAYS" default:"63"`
}

type DisplaySettings struct {
	Backend      string `envconfig:"LED_SALES_DISPLAY_BACKEND" default:"auto"`
	PanelAddr    string `envconfig:"LED_SALES_PANEL_ADDR"`
	SnapshotPath string `envconfig:"LED_SALES_SNAPSHOT_PATH" default:"led-sales.png"`
}

type PortalSettings struct {
	Addr    string `envconfig:"LED_SALES_PORTAL_ADDR" default:":80"`
	EnvPath string `envconfig:"LED_SALES_ENV_PATH" default:".env"`
}

type LogSettings struct {
	Level  string `envconfig:"LED_SALES_LOG_LEVEL" default:"info"`
	Format string `envconfig:"LED_SALES_LOG_FORMAT" default:"console"`
}

// LoadSettings loads envPath (when it exists) over the process environment
// and parses the result. A missing env file is not an error. Values are not
// validated here: the config file and flags may still override them, so call
// Validate once every layer is applied.
func LoadSettings(envPath string) (*Settings, error) {
	if envPath != "" {
		if err := godotenv.Overload(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if envPath != "" && os.Getenv("LED_SALES_ENV_PATH") == "" {
		s.Portal.EnvPath = envPath
	}
	return &s, nil
}

// Validate checks the values that would otherwise fail deep inside the loop.
func (s *Settings) Validate() error {
	if s.Tracker.RefreshSeconds <= 0 {
		return fmt.Errorf("LED_SALES_REFRESH_INTERVAL must be positive, got %d", s.Tracker.RefreshSeconds)
	}
	if s.Tracker.LookbackDays <= 0 {
		return fmt.Errorf("LED_SALES_LOOKBACK_DAYS must be positive, got %d", s.Tracker.LookbackDays)
	}
	if s.Tracker.ErrorCooldown < 0 {
		return fmt.Errorf("LED_SALES_ERROR_COOLDOWN must not be negative")
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}

// ApplyFile sobrescreve os valores com os do arquivo de configuração.
func (s *Settings) ApplyFile(cfg *types.Config) {
	if cfg == nil {
		return
	}
	if cfg.Marketplace != "" {
		s.Tracker.Marketplace = cfg.Marketplace
	}
	if cfg.RefreshInterval > 0 {
		s.Tracker.RefreshSeconds = cfg.RefreshInterval
	}
	if cfg.ErrorCooldown > 0 {
		s.Tracker.ErrorCooldown = time.Duration(cfg.ErrorCooldown) * time.Second
	}
	if cfg.LookbackDays > 0 {
		s.Tracker.LookbackDays = cfg.LookbackDays
	}
	if cfg.Timezone != "" {
		s.Tracker.Timezone = cfg.Timezone
	}
	if cfg.DisplayBackend != "" {
		s.Display.Backend = cfg.DisplayBackend
	}
	if cfg.PanelAddr != "" {
		s.Display.PanelAddr = cfg.PanelAddr
	}
}

// ApplyArgs applies command-line overrides, which win over file and environment.
func (s *Settings) ApplyArgs(args *types.CLIArgs) {
	if args == nil {
		return
	}
	if args.Marketplace != "" {
		s.Tracker.Marketplace = args.Marketplace
	}
	if args.Backend != "" {
		s.Display.Backend = args.Backend
	}
	if args.RefreshSeconds != nil && *args.RefreshSeconds > 0 {
		s.Tracker.RefreshSeconds = *args.RefreshSeconds
	}
	if args.LookbackDays != nil && *args.LookbackDays > 0 {
		s.Tracker.LookbackDays = *args.LookbackDays
	}
	if args.Timezone != "" {
		s.Tracker.Timezone = args.Timezone
	}
	if args.PortalAddr != "" {
		s.Portal.Addr = args.PortalAddr
	}
}

// Credentials returns the Amazon credentials as the domain sees them.
func (s *Settings) Credentials() entity.Credentials {
	return entity.Credentials{
		AppID:              strings.TrimSpace(s.Amazon.AppID),
		AppSecret:          strings.TrimSpace(s.Amazon.AppSecret),
		RefreshToken:       strings.TrimSpace(s.Amazon.RefreshToken),
		EarlyRefreshMargin: s.Amazon.EarlyRefreshMargin,
		RoleARN:            s.Amazon.RoleARN,
		AWSProfile:         s.Amazon.AWSProfile,
	}
}

// Location resolves the configured IANA timezone.
func (s *Settings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Tracker.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Tracker.Timezone, err)
	}
	return loc, nil
}

func (s *Settings) RefreshInterval() time.Duration {
	return time.Duration(s.Tracker.RefreshSeconds) * time.Second
}
