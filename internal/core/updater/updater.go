package updater

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	version "github.com/hashicorp/go-version"

	"tagsync/internal/config"
	"tagsync/internal/shared"
)

// CheckForUpdates compares the running version against the published
// version.json of the configured repository
func CheckForUpdates(cfg *config.Config, currentVersion string) {
	if cfg.UpdateRepo == "" {
		shared.ColorInfo.Println("Update checks are disabled (no UpdateRepo configured).")
		return
	}

	latestVersion, err := fetchRemoteVersion(manifestURL(cfg.UpdateRepo))
	if err != nil {
		shared.ColorError.Printf("Error checking for updates: %v\n", err)
		return
	}

	if isNewerVersion(latestVersion, currentVersion) {
		shared.ColorWarning.Printf("🚨 You are using an outdated version (%s) of tagsync! A new version (%s) is available.\n", currentVersion, latestVersion)
		shared.ColorInfo.Printf("Releases: https://github.com/%s/releases\n", cfg.UpdateRepo)
	} else {
		shared.ColorSuccess.Println("✅ You are running the latest version of tagsync.")
	}
}

// manifestURL builds the raw URL of a repository's version/version.json
func manifestURL(repo string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/main/version/version.json", repo)
}

// fetchRemoteVersion downloads and decodes a version.json manifest
func fetchRemoteVersion(url string) (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("version manifest returned status %d", resp.StatusCode)
	}

	var remote shared.VersionInfo
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return "", fmt.Errorf("failed to decode version manifest: %w", err)
	}
	if remote.Version == "" {
		return "", fmt.Errorf("version manifest carries no version")
	}
	return remote.Version, nil
}

// isNewerVersion compares two versions using semantic versioning
func isNewerVersion(latest, current string) bool {
	vLatest, err := version.NewVersion(latest)
	if err != nil {
		shared.ColorWarning.Printf("⚠️ Error parsing latest version '%s': %v\n", latest, err)
		return false // Cannot determine if newer, assume not
	}

	vCurrent, err := version.NewVersion(current)
	if err != nil {
		shared.ColorWarning.Printf("⚠️ Error parsing current version '%s': %v\n", current, err)
		return false // Cannot determine if newer, assume not
	}

	return vLatest.GreaterThan(vCurrent)
}
