package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileBackend keeps one file per key under a base directory. Key names are
// validated by the middleware before reaching this layer, so they are safe
// to use verbatim as file names.
type FileBackend struct {
	dir string
}

// File constructs a backend rooted at dir. The directory is created lazily
// on the first write.
func File(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *FileBackend) Get(key string) (string, bool, error) {
	payload, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return string(payload), true, nil
}

func (f *FileBackend) Set(key, value string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("storage: create directory %q: %w", f.dir, err)
	}
	if err := os.WriteFile(f.path(key), []byte(value), 0o600); err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	return nil
}

func (f *FileBackend) Remove(key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: remove %q: %w", key, err)
	}
	return nil
}

// Default resolves the durable backend for the current process: a file
// backend under the user cache directory when a probe write succeeds, the
// no-op backend otherwise. Rendering-only contexts without a writable cache
// directory degrade silently; the substitution is logged at debug level.
func Default(logger *slog.Logger) AsyncBackend {
	if logger == nil {
		logger = slog.Default()
	}
	base, err := os.UserCacheDir()
	if err != nil {
		logger.Debug("no user cache directory, persistence disabled", "error", err)
		return Async(Noop())
	}
	backend := File(filepath.Join(base, "go-persist"))
	if !Available(backend) {
		logger.Debug("storage probe failed, persistence disabled", "dir", backend.dir)
		return Async(Noop())
	}
	return Async(backend)
}
