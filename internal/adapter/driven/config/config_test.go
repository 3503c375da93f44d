package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
)

var settingKeys = []string{
	"LED_SALES_APP_ID", "LED_SALES_APP_SECRET", "LED_SALES_REFRESH_TOKEN",
	"LED_SALES_EARLY_REFRESH_MARGIN", "LED_SALES_ROLE_ARN", "LED_SALES_AWS_PROFILE",
	"LED_SALES_MARKETPLACE", "LED_SALES_REFRESH_INTERVAL", "LED_SALES_ERROR_COOLDOWN",
	"LED_SALES_TIMEZONE", "LED_SALES_LOOKBACK_DAYS", "LED_SALES_DISPLAY_BACKEND",
	"LED_SALES_PANEL_ADDR", "LED_SALES_SNAPSHOT_PATH", "LED_SALES_PORTAL_ADDR",
	"LED_SALES_ENV_PATH", "LED_SALES_LOG_LEVEL", "LED_SALES_LOG_FORMAT",
}

// clearEnv registers every key with t.Setenv so values loaded from env files
// are restored after the test, then unsets them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range settingKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSettingsDefaults(t *testing.T) {
	clearEnv(t)

	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "US", s.Tracker.Marketplace)
	assert.Equal(t, 300*time.Second, s.RefreshInterval())
	assert.Equal(t, 30*time.Second, s.Tracker.ErrorCooldown)
	assert.Equal(t, 63, s.Tracker.LookbackDays)
	assert.Equal(t, "auto", s.Display.Backend)
	assert.Equal(t, ":80", s.Portal.Addr)
	assert.Equal(t, time.Minute, s.Amazon.EarlyRefreshMargin)
	assert.False(t, s.Credentials().Complete())

	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", loc.String())
}

func TestLoadSettingsEnvFileOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LED_SALES_MARKETPLACE", "DE")
	t.Setenv("LED_SALES_LOOKBACK_DAYS", "14")

	path := writeFile(t, ".env", "LED_SALES_APP_ID=amzn1.app\nLED_SALES_APP_SECRET=s3cret\nLED_SALES_REFRESH_TOKEN=Atzr|abc\nLED_SALES_MARKETPLACE=UK\n")

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "UK", s.Tracker.Marketplace)
	assert.Equal(t, 14, s.Tracker.LookbackDays)
	assert.True(t, s.Credentials().Complete())
	assert.Equal(t, "Atzr|abc", s.Credentials().RefreshToken)
	assert.Equal(t, path, s.Portal.EnvPath)
}

func TestLoadSettingsRejectsUnparsableValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LED_SALES_ERROR_COOLDOWN", "soon")

	_, err := LoadSettings("")
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"LED_SALES_REFRESH_INTERVAL": "0",
		"LED_SALES_LOOKBACK_DAYS":    "-1",
		"LED_SALES_TIMEZONE":         "Mars/Olympus_Mons",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			s, err := LoadSettings("")
			require.NoError(t, err, "validation waits for the other layers")
			assert.Error(t, s.Validate())
		})
	}
}

func TestValidateAfterArgsOverrideBadTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("LED_SALES_TIMEZONE", "Mars/Olympus_Mons")

	s, err := LoadSettings("")
	require.NoError(t, err)
	s.ApplyArgs(&types.CLIArgs{Timezone: "Europe/Berlin"})

	require.NoError(t, s.Validate())
	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestApplyFileAndArgs(t *testing.T) {
	clearEnv(t)
	s, err := LoadSettings("")
	require.NoError(t, err)

	s.ApplyFile(&types.Config{Marketplace: "CA", RefreshInterval: 120, ErrorCooldown: 15, DisplayBackend: "png", Timezone: "UTC"})
	assert.Equal(t, "CA", s.Tracker.Marketplace)
	assert.Equal(t, 2*time.Minute, s.RefreshInterval())
	assert.Equal(t, 15*time.Second, s.Tracker.ErrorCooldown)
	assert.Equal(t, "png", s.Display.Backend)

	refresh, lookback := 60, 7
	s.ApplyArgs(&types.CLIArgs{Marketplace: "MX", RefreshSeconds: &refresh, LookbackDays: &lookback, PortalAddr: ":8080"})
	assert.Equal(t, "MX", s.Tracker.Marketplace)
	assert.Equal(t, time.Minute, s.RefreshInterval())
	assert.Equal(t, 7, s.Tracker.LookbackDays)
	assert.Equal(t, ":8080", s.Portal.Addr)
	assert.Equal(t, "png", s.Display.Backend, "unset flags keep earlier values")
	assert.NoError(t, s.Validate())
}

func TestLoadConfigFileFormats(t *testing.T) {
	repo := NewConfigRepository()

	files := map[string]string{
		"c.toml": "marketplace = \"DE\"\nrefresh_interval = 90\nreport_type = [\"csv\", \"pdf\"]\n",
		"c.yaml": "marketplace: DE\nrefresh_interval: 90\nreport_type: [csv, pdf]\n",
		"c.json": `{"marketplace":"DE","refresh_interval":90,"report_type":["csv","pdf"]}`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := repo.LoadConfigFile(writeFile(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, "DE", cfg.Marketplace)
			assert.Equal(t, 90, cfg.RefreshInterval)
			assert.Equal(t, []string{"csv", "pdf"}, cfg.ReportType)
		})
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)

	_, err = repo.LoadConfigFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = repo.LoadConfigFile(writeFile(t, "c.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config file format")

	_, err = repo.LoadConfigFile(writeFile(t, "c.json", "{"))
	assert.ErrorContains(t, err, "JSON")

	_, err = repo.LoadConfigFile(writeFile(t, "c.yaml", "report_type: [xlsx]\n"))
	assert.ErrorContains(t, err, "unknown report type")

	_, err = repo.LoadConfigFile(writeFile(t, "c.toml", "lookback_days = -3\n"))
	assert.ErrorContains(t, err, "lookback_days")
}

func TestLoadConfigFileExpandsAndNormalizes(t *testing.T) {
	t.Setenv("TRACKER_MARKET", "de")

	cfg, err := NewConfigRepository().LoadConfigFile(writeFile(t, "c.yml", "marketplace: ${TRACKER_MARKET}\ndisplay_backend: PNG\nreport_type: [CSV, \" pdf\"]\n"))

	require.NoError(t, err)
	assert.Equal(t, "DE", cfg.Marketplace)
	assert.Equal(t, "png", cfg.DisplayBackend)
	assert.Equal(t, []string{"csv", "pdf"}, cfg.ReportType)
}

func TestEnvCredentialStoreMergesKeys(t *testing.T) {
	path := writeFile(t, ".env", "LED_SALES_MARKETPLACE=DE\nLED_SALES_APP_ID=old\n")
	store := NewEnvCredentialStore(path)

	require.NoError(t, store.Save(map[string]string{"LED_SALES_APP_ID": "new", "WIFI_SSID": "shop wifi"}))
	require.NoError(t, store.Save(map[string]string{"LED_SALES_APP_ID": "newer"}))

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"LED_SALES_MARKETPLACE": "DE",
		"LED_SALES_APP_ID":      "newer",
		"WIFI_SSID":             "shop wifi",
	}, values)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnvCredentialStoreCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boot", ".env")
	require.NoError(t, NewEnvCredentialStore(path).Save(map[string]string{"WIFI_PASS": "p@ss word#1"}))

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "p@ss word#1", values["WIFI_PASS"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnvCredentialStoreTightensLooseFile(t *testing.T) {
	path := writeFile(t, ".env", "LED_SALES_MARKETPLACE=US\n")
	require.NoError(t, os.Chmod(path, 0o644))

	require.NoError(t, NewEnvCredentialStore(path).Save(map[string]string{"LED_SALES_APP_SECRET": "s3cret"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}
