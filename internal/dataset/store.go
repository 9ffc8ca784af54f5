package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/storage"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces an uploaded filename to its base name with unsafe
// characters replaced, so it can be written into the uploads directory.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	return base
}

// Store tracks which uploaded file is current. The pointer is persisted via
// Storage; physical files live in a plain directory.
type Store struct {
	storage  storage.Storage
	dir      string
	seedPath string
	logger   *zap.Logger
}

// NewStore creates a dataset store over the given uploads directory.
// seedPath names a built-in dataset copied in by Bootstrap when nothing is loaded.
func NewStore(st storage.Storage, dir, seedPath string, logger *zap.Logger) *Store {
	return &Store{storage: st, dir: dir, seedPath: seedPath, logger: logger}
}

// Dir returns the uploads directory.
func (s *Store) Dir() string {
	return s.dir
}

// Current returns the filename of the current dataset, or "" if none is set.
func (s *Store) Current(ctx context.Context) (string, error) {
	return s.storage.CurrentFile(ctx)
}

// Path returns the full path of a dataset file inside the uploads directory.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// SaveUpload writes an uploaded file into the uploads directory and sets it as
// the current dataset. Returns the stored (sanitized) filename.
func (s *Store) SaveUpload(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	if !AllowedFile(name) {
		return "", fmt.Errorf("file type not allowed: %s", name)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	dst, err := os.Create(s.Path(name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	if err := s.storage.SetCurrentFile(ctx, name); err != nil {
		return "", fmt.Errorf("set current file: %w", err)
	}
	return name, nil
}

// RemoveCurrent deletes the current dataset file and clears the pointer.
// A missing physical file is not an error.
func (s *Store) RemoveCurrent(ctx context.Context) error {
	current, err := s.storage.CurrentFile(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		return nil
	}
	if err := os.Remove(s.Path(current)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove dataset file: %w", err)
	}
	return s.storage.ClearCurrentFile(ctx)
}

// Bootstrap seeds the store on process start. The seed is copied only when no
// pointer exists or the pointed-to file is missing; a healthy pointer is never
// overwritten. A missing seed file is logged and leaves the store empty.
func (s *Store) Bootstrap(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	current, err := s.storage.CurrentFile(ctx)
	if err != nil {
		return err
	}
	if current != "" {
		if _, statErr := os.Stat(s.Path(current)); statErr == nil {
			return nil
		}
		s.logger.Warn("current dataset file missing, reseeding", zap.String("filename", current))
	}
	if _, err := os.Stat(s.seedPath); err != nil {
		s.logger.Warn("seed dataset not found, starting empty", zap.String("seed_path", s.seedPath))
		return nil
	}
	name := filepath.Base(s.seedPath)
	if err := copyFile(s.seedPath, s.Path(name)); err != nil {
		return fmt.Errorf("copy seed dataset: %w", err)
	}
	if err := s.storage.SetCurrentFile(ctx, name); err != nil {
		return err
	}
	s.logger.Info("seed dataset loaded", zap.String("filename", name))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
