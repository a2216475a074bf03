// Package storage keeps uploaded recordings on the local disk.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/logger"
)

type Local struct {
	dir string
	log *logger.Logger
}

// NewLocal prepares dir for uploads, creating it when missing.
func NewLocal(dir string, log *logger.Logger) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, log: log.Component("storage")}, nil
}

func (l *Local) Dir() string { return l.dir }

// CleanName reduces a client supplied filename to its base name.
func CleanName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "", apperr.BadRequestf("invalid filename %q", filename)
	}
	return name, nil
}

// Save writes r under the base name of filename. The bytes go to a temporary
// file first so a failed write never leaves a partial recording behind. Two
// uploads with the same name overwrite each other.
func (l *Local) Save(filename string, r io.Reader) (*Upload, error) {
	name, err := CleanName(filename)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(l.dir, name)

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	size, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("store upload: %w", err)
	}

	l.log.WithField("file", name).WithField("bytes", size).Info("upload saved")
	return &Upload{Name: name, Path: target, Size: size, log: l.log}, nil
}

// Upload is a saved recording owned by one pipeline run. Until Commit is
// called, Rollback deletes it.
type Upload struct {
	Name string
	Path string
	Size int64

	log  *logger.Logger
	mu   sync.Mutex
	done bool
}

// Commit keeps the file. Later Rollback calls do nothing.
func (u *Upload) Commit() {
	u.mu.Lock()
	u.done = true
	u.mu.Unlock()
}

// Rollback removes the file unless it was committed. It is safe to call more
// than once.
func (u *Upload) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return nil
	}
	u.done = true
	if err := os.Remove(u.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	u.log.WithField("file", u.Name).Info("upload removed")
	return nil
}
