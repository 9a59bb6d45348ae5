package credentials

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"telltales/pkg/logging"
)

const subsystem = "Credentials"

// Store reads and writes Credentials at a fixed file path.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store bound to path. The file need not exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the credential file this store is bound to.
func (s *Store) Path() string {
	return s.path
}

// Load reads the credential file. A missing file yields empty Credentials;
// missing fields are left empty and are not an error.
func (s *Store) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (Credentials, error) {
	// #nosec G304 -- path is the user's own credential file
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Debug(subsystem, "No credential file at %s", s.path)
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, &FileError{Op: "read", Path: s.path, Err: err}
	}

	var creds Credentials
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &creds); err != nil {
			return Credentials{}, &FileError{Op: "parse", Path: s.path, Err: err}
		}
	}

	logging.Debug(subsystem, "Loaded credential file %s (missing keys: %v, token present: %t)",
		s.path, creds.MissingKeys(), creds.HasToken())
	return creds, nil
}

// Save replaces the credential file with creds.
func (s *Store) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(creds)
}

// Update loads the current file, merges overlay on top of it and saves the
// result in a single write. It returns the merged credentials.
func (s *Store) Update(overlay Credentials) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked()
	if err != nil {
		return Credentials{}, err
	}
	merged := Merge(current, overlay)
	if err := s.saveLocked(merged); err != nil {
		return Credentials{}, err
	}
	return merged, nil
}

func (s *Store) saveLocked(creds Credentials) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &FileError{Op: "mkdir", Path: dir, Err: err}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(creds); err != nil {
		return &FileError{Op: "encode", Path: s.path, Err: err}
	}
	if err := enc.Close(); err != nil {
		return &FileError{Op: "encode", Path: s.path, Err: err}
	}

	if err := writeFileAtomic(s.path, buf.Bytes(), 0600); err != nil {
		logging.Warn(subsystem, "Credential file write failed for %s", s.path)
		return &FileError{Op: "write", Path: s.path, Err: err}
	}

	logging.Info(subsystem, "Stored credential file %s", s.path)
	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory,
// syncs it and renames it over path. The previous file survives any failure.
func writeFileAtomic(path string, data []byte, mode os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(mode); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
