package selfupdate

import (
	"errors"
	"fmt"

	"github.com/blang/semver"
	ghupdate "github.com/rhysd/go-github-selfupdate/selfupdate"
)

// ErrNoRelease is returned when the repository has no matching release
var ErrNoRelease = errors.New("no release found for this platform")

// Check describes the latest release relative to the running version
type Check struct {
	Current semver.Version
	Latest  semver.Version
	// Development builds have no comparable version and always update
	Development bool
	Release     *ghupdate.Release
}

// Newer reports whether the latest release should replace the current binary
func (c *Check) Newer() bool {
	return c.Development || c.Latest.GT(c.Current)
}

// Detect looks up the latest release for current
func Detect(src Source, slug, current string) (*Check, error) {
	rel, found, err := src.DetectLatest(slug)
	if err != nil {
		return nil, fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found || rel == nil {
		return nil, ErrNoRelease
	}

	check := &Check{Latest: rel.Version, Release: rel}
	v, err := ParseVersion(current)
	if err != nil {
		check.Development = true
		return check, nil
	}
	check.Current = v
	return check, nil
}

// Apply installs the release of check over cmdPath
func Apply(src Source, check *Check, cmdPath string) error {
	if check == nil || check.Release == nil {
		return ErrNoRelease
	}
	if err := src.UpdateTo(check.Release, cmdPath); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return nil
}
