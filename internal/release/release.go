// Package release looks up published nf-core/scrnaseq releases
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const checkTimeout = 10 * time.Second

// GitHubRelease represents the GitHub API response for a release
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Checker queries a GitHub "latest release" endpoint
type Checker struct {
	url    string
	client *http.Client
}

// NewChecker creates a Checker for the given releases/latest API URL
func NewChecker(url string) *Checker {
	return &Checker{
		url:    url,
		client: &http.Client{Timeout: checkTimeout},
	}
}

// Latest fetches the latest published release
func (c *Checker) Latest(ctx context.Context) (*GitHubRelease, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release info: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("release info has no tag")
	}

	return &release, nil
}

// IsOutdated compares release tags and returns true if latest is newer than current.
// Tags are expected in format "X.Y.Z" or "vX.Y.Z"; "dev" is always outdated.
func IsOutdated(current, latest string) bool {
	current = strings.TrimPrefix(current, "v")
	latest = strings.TrimPrefix(latest, "v")

	if current == "dev" {
		return latest != "dev"
	}

	currentParts := parseVersion(current)
	latestParts := parseVersion(latest)

	for i := 0; i < 3; i++ {
		if latestParts[i] > currentParts[i] {
			return true
		}
		if latestParts[i] < currentParts[i] {
			return false
		}
	}

	return false
}

// parseVersion extracts major, minor, patch from a version string
func parseVersion(v string) [3]int {
	var parts [3]int
	fmt.Sscanf(v, "%d.%d.%d", &parts[0], &parts[1], &parts[2])
	return parts
}
