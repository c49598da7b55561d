package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
)

const sessionFileName = "session.json"

// LockTimeout bounds how long a write waits for the cross-process lock.
// When it expires the write proceeds unlocked rather than hanging the CLI.
const LockTimeout = 100 * time.Millisecond

// FileStore keeps session values in <dir>/session.json, shaped
// {"<origin>": {"<key>": "<value>"}}, so several backends can share one file.
type FileStore struct {
	dir    string
	origin string
}

// NewFileStore creates a file-backed store for origin.
func NewFileStore(dir, origin string) *FileStore {
	return &FileStore{dir: dir, origin: origin}
}

// Path returns the session file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, sessionFileName)
}

func (s *FileStore) lockPath() string {
	return filepath.Join(s.dir, ".session.lock")
}

// Get returns the stored value. A missing or corrupt file reads as absent.
func (s *FileStore) Get(key string) (string, bool) {
	all, err := s.readAll()
	if err != nil {
		return "", false
	}
	v, ok := all[s.origin][key]
	return v, ok
}

// Set stores value under key.
func (s *FileStore) Set(key, value string) error {
	return s.update(func(values map[string]string) {
		values[key] = value
	})
}

// Remove deletes key. Missing keys are ignored.
func (s *FileStore) Remove(key string) error {
	if _, ok := s.Get(key); !ok {
		return nil
	}
	return s.update(func(values map[string]string) {
		delete(values, key)
	})
}

// update applies fn to this origin's values under the file lock and writes the result.
func (s *FileStore) update(fn func(map[string]string)) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	all, err := s.readAll()
	if err != nil {
		// Corrupt file: start over rather than refuse to store a session.
		all = make(map[string]map[string]string)
	}
	values := all[s.origin]
	if values == nil {
		values = make(map[string]string)
	}
	fn(values)
	if len(values) == 0 {
		delete(all, s.origin)
	} else {
		all[s.origin] = values
	}
	return s.writeAll(all)
}

// lock takes the cross-process lock, failing open on timeout.
func (s *FileStore) lock() (func(), error) {
	fl := flock.New(s.lockPath())

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return func() {}, nil
		}
		return nil, err
	}
	if !locked {
		return func() {}, nil
	}
	return func() { _ = fl.Unlock() }, nil
}

func (s *FileStore) readAll() (map[string]map[string]string, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]map[string]string), nil
		}
		return nil, err
	}

	var all map[string]map[string]string
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = make(map[string]map[string]string)
	}
	return all, nil
}

func (s *FileStore) writeAll(all map[string]map[string]string) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "session-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	dest := s.Path()
	if err := os.Rename(tmpPath, dest); err != nil {
		if runtime.GOOS == "windows" {
			_ = os.Remove(dest)
			return os.Rename(tmpPath, dest)
		}
		os.Remove(tmpPath)
		return err
	}
	return nil
}
