package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIgnoreFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ignore")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMatcher(t *testing.T) {
	base := t.TempDir()
	path := writeIgnoreFile(t, "*.mp4\nCS101/announcements/\n")

	p, err := Load(path, base)
	require.NoError(t, err)

	m, ok := p.(*Matcher)
	require.True(t, ok)
	assert.Equal(t, path, m.Source())

	assert.True(t, p.Matches(filepath.Join(base, "CS101", "files", "lecture.mp4")))
	assert.False(t, p.Matches(filepath.Join(base, "CS101", "files", "lecture.pdf")))
	assert.True(t, p.Matches(filepath.Join(base, "CS101", "announcements", "a.pdf")))
	assert.True(t, p.Matches(filepath.Join(base, "CS101", "announcements")+"/"))
	assert.False(t, p.Matches(filepath.Join(base, "CS101", "discussions", "a.pdf")))
}

func TestMatcher_OutsideBase(t *testing.T) {
	base := t.TempDir()
	p, err := Load(writeIgnoreFile(t, "*.mp4\n"), base)
	require.NoError(t, err)

	assert.False(t, p.Matches(filepath.Join(filepath.Dir(base), "video.mp4")))
	assert.False(t, p.Matches(base))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"), t.TempDir())
	assert.Error(t, err)
}

func TestLoad_DefaultFileAbsent(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	p, err := Load("", ".")
	require.NoError(t, err)
	assert.Equal(t, Nothing{}, p)
	assert.False(t, p.Matches("anything"))
}

func TestLoad_DefaultFilePresent(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	require.NoError(t, os.WriteFile(DefaultFile, []byte("*.zip\n"), 0o644))

	p, err := Load("", dir)
	require.NoError(t, err)
	assert.True(t, p.Matches(filepath.Join(dir, "course", "archive.zip")))
}
