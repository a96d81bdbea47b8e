// Package selfupdate replaces the running binary with the latest GitHub release.
package selfupdate

import (
	"fmt"
	"strings"

	"github.com/blang/semver"
	ghupdate "github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Slug is the GitHub repository releases are published to
const Slug = "dreamdigital/landing"

// Source finds and applies releases. *ghupdate.Updater satisfies it.
type Source interface {
	DetectLatest(slug string) (*ghupdate.Release, bool, error)
	UpdateTo(rel *ghupdate.Release, cmdPath string) error
}

// NewSource returns a GitHub source; token may be empty for public repositories
func NewSource(token string) (Source, error) {
	updater, err := ghupdate.NewUpdater(ghupdate.Config{
		APIToken: token,
		Filters:  []string{`^landing[_-]`},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}
	return updater, nil
}

// ParseVersion accepts tags with or without a leading "v"
func ParseVersion(raw string) (semver.Version, error) {
	v, err := semver.Parse(strings.TrimPrefix(strings.TrimSpace(raw), "v"))
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	return v, nil
}
