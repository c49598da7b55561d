// Package completion provides tab completion support for the ringlify CLI.
// Business IDs seen by `admin businesses list` are cached on disk so shell
// completions work offline and never touch the backend.
package completion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ringlify/ringlify-cli/internal/models"
)

// CachedBusiness holds business data for tab completion.
type CachedBusiness struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Cache stores completion data with metadata for staleness detection.
type Cache struct {
	Businesses []CachedBusiness `json:"businesses,omitempty"`
	Origin     string           `json:"origin,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Version    int              `json:"version"`
}

const (
	// CacheVersion is the current cache schema version.
	CacheVersion = 1

	// DefaultMaxAge is the default cache staleness threshold.
	DefaultMaxAge = 24 * time.Hour

	// CacheFileName is the default cache file name.
	CacheFileName = "completion.json"
)

// Store handles reading and writing the completion cache.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a new cache store.
// If dir is empty, it uses the default location (~/.cache/ringlify/).
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns the cache directory, honoring RINGLIFY_CACHE_DIR
// and XDG_CACHE_HOME.
func DefaultDir() string {
	if v := os.Getenv("RINGLIFY_CACHE_DIR"); v != "" {
		return v
	}
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "ringlify")
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path to the cache file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, CacheFileName)
}

// Load reads the cache from disk.
// A missing or corrupted file yields an empty cache, not an error.
func (s *Store) Load() (*Cache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &Cache{Version: CacheVersion}, nil
		}
		return nil, err
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return &Cache{Version: CacheVersion}, nil //nolint:nilerr // corrupted cache is rebuilt on next list
	}
	return &cache, nil
}

// UpdateBusinesses replaces the cached businesses for origin.
func (s *Store) UpdateBusinesses(origin string, list []models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := &Cache{
		Businesses: make([]CachedBusiness, len(list)),
		Origin:     origin,
		UpdatedAt:  time.Now(),
		Version:    CacheVersion,
	}
	for i, b := range list {
		cache.Businesses[i] = CachedBusiness{ID: b.ID, Name: b.Name, PhoneNumber: b.PhoneNumber}
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := s.Path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.Path())
}

// Businesses returns cached businesses for origin, or nil if the cache
// is empty, missing, or was written against another backend.
func (s *Store) Businesses(origin string) []CachedBusiness {
	cache, err := s.Load()
	if err != nil || cache.Origin != origin {
		return nil
	}
	return cache.Businesses
}

// IsStale returns true if the cache is missing or older than maxAge.
func (s *Store) IsStale(maxAge time.Duration) bool {
	cache, err := s.Load()
	if err != nil || cache.UpdatedAt.IsZero() {
		return true
	}
	return time.Since(cache.UpdatedAt) > maxAge
}

// Clear removes the cache file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
