// Package ignore decides which local paths must not be downloaded, using
// gitignore syntax relative to the destination folder.
package ignore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// DefaultFile is looked up in the working directory when no ignore file is configured
const DefaultFile = ".canvasignore"

// Predicate reports whether a local path is excluded
type Predicate interface {
	Matches(path string) bool
}

// Nothing is a Predicate that excludes nothing
type Nothing struct{}

// Matches always returns false
func (Nothing) Matches(string) bool { return false }

// Matcher matches paths against gitignore patterns rooted at a base directory
type Matcher struct {
	base    string
	source  string
	matcher *gitignore.GitIgnore
}

// Load compiles the ignore file at path, with patterns rooted at base.
// When path is empty, DefaultFile is used if it exists, otherwise a
// Nothing predicate is returned.
func Load(path, base string) (Predicate, error) {
	if path == "" {
		if !utils.FileExists(afero.NewOsFs(), DefaultFile) {
			return Nothing{}, nil
		}
		path = DefaultFile
	}

	gi, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ignore file %s: %w", path, err)
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}

	return &Matcher{base: absBase, source: path, matcher: gi}, nil
}

// Source returns the ignore file in use
func (m *Matcher) Source() string {
	return m.source
}

// Matches reports whether path is excluded. Paths outside the base
// directory never match. A trailing separator marks a directory.
func (m *Matcher) Matches(path string) bool {
	dir := strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/")

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(m.base, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	rel = filepath.ToSlash(rel)
	if dir {
		rel += "/"
	}

	return m.matcher.MatchesPath(rel)
}
