package selfupdate

import (
	"errors"
	"testing"

	"github.com/blang/semver"
	ghupdate "github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	release   *ghupdate.Release
	found     bool
	err       error
	updated   string
	updateErr error
}

func (f *fakeSource) DetectLatest(slug string) (*ghupdate.Release, bool, error) {
	return f.release, f.found, f.err
}

func (f *fakeSource) UpdateTo(rel *ghupdate.Release, cmdPath string) error {
	f.updated = cmdPath
	return f.updateErr
}

func release(v string) *ghupdate.Release {
	return &ghupdate.Release{Version: semver.MustParse(v), AssetURL: "https://example.com/landing_linux_amd64.tar.gz"}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, semver.MustParse("1.2.3"), v)

	_, err = ParseVersion("dev")
	assert.Error(t, err)
}

func TestDetectNewerRelease(t *testing.T) {
	src := &fakeSource{release: release("1.3.0"), found: true}

	check, err := Detect(src, Slug, "v1.2.0")
	require.NoError(t, err)
	assert.True(t, check.Newer())
	assert.Equal(t, "1.2.0", check.Current.String())
	assert.Equal(t, "1.3.0", check.Latest.String())
}

func TestDetectUpToDate(t *testing.T) {
	src := &fakeSource{release: release("1.2.0"), found: true}

	check, err := Detect(src, Slug, "1.2.0")
	require.NoError(t, err)
	assert.False(t, check.Newer())
}

func TestDetectDevelopmentBuild(t *testing.T) {
	src := &fakeSource{release: release("0.1.0"), found: true}

	check, err := Detect(src, Slug, "dev")
	require.NoError(t, err)
	assert.True(t, check.Development)
	assert.True(t, check.Newer())
}

func TestDetectNoRelease(t *testing.T) {
	_, err := Detect(&fakeSource{}, Slug, "1.0.0")
	assert.ErrorIs(t, err, ErrNoRelease)

	_, err = Detect(&fakeSource{err: errors.New("rate limited")}, Slug, "1.0.0")
	assert.ErrorContains(t, err, "rate limited")
}

func TestApply(t *testing.T) {
	src := &fakeSource{release: release("1.3.0"), found: true}
	check, err := Detect(src, Slug, "1.2.0")
	require.NoError(t, err)

	require.NoError(t, Apply(src, check, "/usr/local/bin/landing"))
	assert.Equal(t, "/usr/local/bin/landing", src.updated)

	src.updateErr = errors.New("permission denied")
	assert.ErrorContains(t, Apply(src, check, "/usr/local/bin/landing"), "permission denied")

	assert.ErrorIs(t, Apply(src, nil, "/x"), ErrNoRelease)
}
