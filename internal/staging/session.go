package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"mixdown/internal/fileutil"
)

// Session is a scratch workspace for a single mix operation. Outputs are
// written inside the session directory and either exported to their final
// destination or left in place for the user to collect.
type Session struct {
	ID  string
	Dir string
}

// NewSession creates a uniquely named scratch directory under root.
func NewSession(root string) (*Session, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("staging root not configured")
	}
	id := uuid.NewString()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging session: %w", err)
	}
	return &Session{ID: id, Dir: dir}, nil
}

// OutputPath returns the session-local path for name.
func (s *Session) OutputPath(name string) string {
	return filepath.Join(s.Dir, name)
}

// Export moves path out of the session to target, falling back to copy+delete
// for cross-device moves. Parent directories of target are created as needed.
func (s *Session) Export(path, target string) error {
	if dir := filepath.Dir(target); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	renameErr := os.Rename(path, target)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if copyErr := fileutil.CopyFile(path, target); copyErr != nil {
			return fmt.Errorf("copy across filesystems: %w", copyErr)
		}
		// Close removes the session directory anyway.
		_ = os.Remove(path)
		return nil
	}

	return fmt.Errorf("move output: %w", renameErr)
}

// Close removes the session directory and everything in it.
func (s *Session) Close() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	return os.RemoveAll(s.Dir)
}
