// Package store persists the manifest as a single TOML file.
//
// The whole manifest is read and written as one unit. That is a deliberate
// simplicity trade-off: the file stays small (dozens to hundreds of
// projects) and command frequency is low. Serialization of concurrent
// writers is the registry's job; the store only guarantees that each save
// is atomic and durable.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/manifest"
)

// ErrCorrupt marks a manifest file that exists but cannot be parsed.
var ErrCorrupt = errors.New("manifest file corrupted")

const (
	saveAttempts = 3
	saveBackoff  = 50 * time.Millisecond
)

// Store loads and saves the manifest file.
type Store struct {
	path   string
	logger *zap.Logger
}

// New creates a store for the manifest at path. An empty path defaults to
// ~/.config/ctrld/manifest.toml. The parent directory is created if needed.
func New(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "ctrld", "manifest.toml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	return &Store{path: path, logger: logger}, nil
}

// Path returns the manifest file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the manifest from disk.
//
// A missing file is not an error: a default empty manifest is written
// first and then read back. An unparsable file is renamed aside to
// <path>.corrupt and replaced by the default, so a hand-edit gone wrong
// never takes commands down but the original bytes survive for the
// operator.
//
// Load may therefore write on a fresh or corrupt file even when callers
// treat it as a read. Concurrent first-run loads are safe: each save goes
// through its own unique temp file and the renames are atomic with
// identical default content. On corrupt recovery the losing rename fails
// and is only logged.
func (s *Store) Load() (*manifest.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.Save(manifest.Default()); err != nil {
			return nil, fmt.Errorf("failed to initialize manifest: %w", err)
		}
		if data, err = os.ReadFile(s.path); err != nil {
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m manifest.Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		s.recoverCorrupt(fmt.Errorf("%w: %v", ErrCorrupt, err))
		return manifest.Default(), nil
	}

	m.Normalize()
	return &m, nil
}

// recoverCorrupt preserves an unreadable manifest file under a .corrupt
// suffix so the next save does not overwrite it.
func (s *Store) recoverCorrupt(cause error) {
	aside := s.path + ".corrupt"
	if err := os.Rename(s.path, aside); err != nil {
		s.logger.Error("manifest unreadable and could not be preserved",
			zap.String("path", s.path),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.logger.Error("manifest unreadable, starting from empty manifest",
		zap.String("path", s.path),
		zap.String("preserved", aside),
		zap.NamedError("cause", cause),
	)
}

// Save serializes the full manifest and overwrites the file atomically:
// write to a temp file, fsync, rename. Transient failures are retried
// before surfacing.
func (s *Store) Save(m *manifest.Manifest) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	var err error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		if err = s.writeAtomic(buf.Bytes()); err == nil {
			return nil
		}
		s.logger.Warn("manifest save failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < saveAttempts {
			time.Sleep(time.Duration(attempt) * saveBackoff)
		}
	}
	return fmt.Errorf("failed to save manifest after %d attempts: %w", saveAttempts, err)
}

func (s *Store) writeAtomic(data []byte) error {
	// A unique temp file per write keeps concurrent savers (two first-run
	// loads, for example) from clobbering each other before the rename.
	f, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp manifest: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	// Flush to durable storage before the rename makes it visible.
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close manifest: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename manifest: %w", err)
	}
	return nil
}
