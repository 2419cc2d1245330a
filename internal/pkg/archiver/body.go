package archiver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/canvas-downloader/canvas-downloader/pkg/models"
	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// tempPath returns a hidden, unique temporary file next to target
func tempPath(target string) string {
	name := filepath.Base(target)
	return filepath.Join(filepath.Dir(target), fmt.Sprintf(".%016x-%s.tmp", xxh3.HashString(name), uuid.NewString()[:8]))
}

// sourceReader remembers the last error of the remote stream so that it
// can be told apart from local write failures
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return n, err
}

// write streams r into a temporary file and renames it over the target
func (a *Archiver) write(item *models.Item, r io.Reader) (written int64, err error) {
	if err := a.fs.MkdirAll(filepath.Dir(item.TargetPath), 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLocalIO, err)
	}

	tmp := tempPath(item.TargetPath)
	f, err := a.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLocalIO, err)
	}
	defer func() {
		if err != nil {
			a.fs.Remove(tmp)
		}
	}()

	src := &sourceReader{r: r}
	written, err = io.Copy(f, src)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		if src.err != nil {
			return 0, fmt.Errorf("reading %s: %w", item.URL, src.err)
		}
		return 0, fmt.Errorf("%w: %w", ErrLocalIO, err)
	}

	if !item.UpdatedAt.IsZero() {
		if err = a.fs.Chtimes(tmp, item.UpdatedAt, item.UpdatedAt); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrLocalIO, err)
		}
	}

	if err = a.fs.Rename(tmp, item.TargetPath); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLocalIO, err)
	}

	return written, nil
}
