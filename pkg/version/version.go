package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// Valores padrão (sobrescritos por ldflags ou por build info)
var Version = devVersion
var Commit = ""
var BuildTime = ""

const devVersion = "0.0.0-dev"

// init preenche Version/Commit/BuildTime a partir do build info quando ldflags não o fez.
func init() {
	if Version != "" && Version != devVersion {
		return
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		Version, Commit, BuildTime = fromBuildInfo(bi, Version, Commit, BuildTime)
	}
}

// fromBuildInfo lê as chaves vcs.* embutidas pelo toolchain (buildvcs).
// Commit fica com 7 caracteres; "-dirty" é anexado quando vcs.modified=true.
func fromBuildInfo(bi *debug.BuildInfo, version, commit, buildTime string) (string, string, string) {
	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if commit == "" {
		if rev := settings["vcs.revision"]; len(rev) >= 7 {
			commit = rev[:7]
		}
	}

	if buildTime == "" {
		if ts, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			buildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
		}
	}

	// Main.Version vem como "(devel)" em builds locais; go install ...@vX traz a tag.
	tag := settings["vcs.tag"]
	if tag == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		tag = bi.Main.Version
	}
	if tag != "" {
		version = strings.TrimPrefix(tag, "v")
		if strings.EqualFold(settings["vcs.modified"], "true") {
			version += "-dirty"
		}
	}
	return version, commit, buildTime
}

// newer reports whether candidate is a higher dotted version than current.
func newer(candidate, current string) bool {
	a := versionParts(candidate)
	b := versionParts(current)
	for i := 0; i < len(a) || i < len(b); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			return x > y
		}
	}
	return false
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	var parts []int
	for _, p := range strings.Split(v, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}

// ReleasesURL aponta para a última release publicada.
var ReleasesURL = "https://api.github.com/repos/diillson/led-sales-tracker-go/releases/latest"

// LatestVersion consulta a última release. Retorna "" se não houver uma mais nova.
func LatestVersion(ctx context.Context, client *http.Client, currentVersion string) string {
	// Versões dev não são verificadas
	if strings.HasSuffix(currentVersion, "-dev") {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return ""
	}
	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	var release struct {
		TagName string `json:"tag_name"`
	}

	if err := json.Unmarshal(body, &release); err != nil {
		return ""
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	if newer(latestVersion, currentVersion) {
		return latestVersion
	}
	return ""
}

// CheckLatestVersion avisa no terminal quando uma versão mais recente está disponível.
func CheckLatestVersion(currentVersion string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	latest := LatestVersion(ctx, &http.Client{Timeout: 3 * time.Second}, currentVersion)
	if latest == "" {
		return
	}
	pterm.Warning.Println(fmt.Sprintf("A new version of LED Sales Tracker is available: %s", latest))
	pterm.Info.Println("Please update using: go install github.com/diillson/led-sales-tracker-go/cmd/led-sales@latest")
}

// FormatVersion retorna a versão formatada com commit e build time.
// Ex.: "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)"
// Fallbacks: quando não há ldflags, usamos os valores populados via build info.
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = devVersion
	}

	commit := Commit
	if commit == "" {
		commit = "development"
	}

	// Quando commit é "development", exibimos "(development)" para clareza
	if commit == "development" && BuildTime == "" {
		return fmt.Sprintf("%s (development)", ver)
	}

	if BuildTime != "" {
		return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, commit, BuildTime)
	}

	return fmt.Sprintf("%s (commit: %s)", ver, commit)
}
