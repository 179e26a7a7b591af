// Package version holds the build version and the release check that warns
// when the running binary lags the latest GitHub release.
package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-version"
	"go.uber.org/zap"
)

// AppVersion is stamped at build time via -ldflags.
var AppVersion = "v0.1.0"

const releaseURL = "https://api.github.com/repos/arclight-ai/arclight/releases/latest"

type gitHubRelease struct {
	TagName string `json:"tag_name"`
}

// CheckForUpdates compares AppVersion to the latest published release.
// Network or parse failures are silent; this is advisory only.
func CheckForUpdates(logger *zap.Logger) {
	client := http.Client{
		Timeout: 2 * time.Second,
	}

	resp, err := client.Get(releaseURL)
	if err != nil {
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return
	}

	var release gitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return
	}

	current, err := version.NewVersion(AppVersion)
	if err != nil {
		return
	}

	latest, err := version.NewVersion(release.TagName)
	if err != nil {
		return
	}

	if current.LessThan(latest) {
		logger.Warn(fmt.Sprintf("You are running an outdated version (%s); the latest is %s", AppVersion, release.TagName))
	}
}
