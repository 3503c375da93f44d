package types

// Config represents the application configuration that can be loaded from a file.
// Zero values mean "keep what the environment says".
type Config struct {
	Marketplace     string   `json:"marketplace" yaml:"marketplace" toml:"marketplace"`
	RefreshInterval int      `json:"refresh_interval" yaml:"refresh_interval" toml:"refresh_interval"`
	ErrorCooldown   int      `json:"error_cooldown" yaml:"error_cooldown" toml:"error_cooldown"`
	LookbackDays    int      `json:"lookback_days" yaml:"lookback_days" toml:"lookback_days"`
	Timezone        string   `json:"timezone" yaml:"timezone" toml:"timezone"`
	DisplayBackend  string   `json:"display_backend" yaml:"display_backend" toml:"display_backend"`
	PanelAddr       string   `json:"panel_addr" yaml:"panel_addr" toml:"panel_addr"`
	ReportName      string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType      []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir             string   `json:"dir" yaml:"dir" toml:"dir"`
}
