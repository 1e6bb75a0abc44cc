// Package resolver selects the profile that applies to a working directory:
// directory-local marker files win over the configured default, and results
// are cached with a bounded lifetime.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/logging"
	"github.com/systmms/credvault/internal/vault"
)

// MarkerFileName is the directory-local file naming the profile that applies
// within that directory and its descendants.
const MarkerFileName = ".credvault"

// Source says where a resolution came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceMarker  Source = "marker"
	SourceDefault Source = "default"
	SourceNone    Source = "none"
)

// Resolution is the outcome of a resolve call. An empty Profile with
// SourceNone means no profile applies; callers decide whether that is fatal.
type Resolution struct {
	Profile    string
	Source     Source
	MarkerPath string
}

// Resolver walks directory ancestry for marker files, backed by the TTL cache.
type Resolver struct {
	store  *vault.Store
	cache  *Cache
	logger *logging.Logger
}

// New creates a resolver over the given record store and cache.
func New(store *vault.Store, cache *Cache, logger *logging.Logger) *Resolver {
	return &Resolver{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Resolve determines the profile for startDir. A live cache entry is served
// without touching the filesystem; otherwise the tree is walked upward and the
// nearest marker wins, falling back to the configured default. Every walk
// outcome, including "none", is written back to the cache.
func (r *Resolver) Resolve(startDir string) (Resolution, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return Resolution{}, cverrors.UserError{
			Message: "could not resolve working directory",
			Err:     err,
		}
	}

	cfg, err := r.store.Load()
	if err != nil {
		return Resolution{}, err
	}

	if name, ok := r.cache.Get(abs); ok {
		if name == "" {
			r.logger.Debug("cache: no profile for %s", abs)
			return Resolution{Source: SourceNone}, nil
		}
		// A cached name that no longer exists is a stale entry, not an
		// error; fall through to a fresh walk.
		if cfg.Exists(name) {
			r.logger.Debug("cache: profile %s for %s", name, abs)
			return Resolution{Profile: name, Source: SourceCache}, nil
		}
		r.logger.Debug("cache: stale profile %s for %s, re-walking", name, abs)
	}

	res, err := r.walk(abs, cfg)
	if err != nil {
		return Resolution{}, err
	}

	if err := r.cache.Put(abs, res.Profile); err != nil {
		r.logger.Debug("cache write for %s failed: %v", abs, err)
	}
	return res, nil
}

// walk climbs from dir to the filesystem root looking for the nearest marker.
func (r *Resolver) walk(dir string, cfg *vault.Config) (Resolution, error) {
	current := dir
	for {
		marker := filepath.Join(current, MarkerFileName)
		data, err := os.ReadFile(marker)
		if err == nil {
			name := strings.TrimSpace(string(data))
			if !cfg.Exists(name) {
				return Resolution{}, cverrors.DanglingReferenceError{Profile: name, Marker: marker}
			}
			return Resolution{Profile: name, Source: SourceMarker, MarkerPath: marker}, nil
		}
		if !os.IsNotExist(err) {
			r.logger.Debug("skipping unreadable marker %s: %v", marker, err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	if cfg.DefaultProfile != "" {
		return Resolution{Profile: cfg.DefaultProfile, Source: SourceDefault}, nil
	}
	return Resolution{Source: SourceNone}, nil
}

// WriteMarker creates the marker file for dir, naming an existing profile, and
// primes the cache for that directory.
func (r *Resolver) WriteMarker(dir, name string) (string, error) {
	cfg, err := r.store.Load()
	if err != nil {
		return "", err
	}
	if !cfg.Exists(name) {
		return "", cverrors.ProfileNotFoundError{Name: name}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	marker := filepath.Join(abs, MarkerFileName)
	if err := os.WriteFile(marker, []byte(name+"\n"), 0o644); err != nil {
		return "", cverrors.UserError{
			Message: "could not write marker file " + marker,
			Err:     err,
		}
	}

	if err := r.cache.Put(abs, name); err != nil {
		r.logger.Debug("cache write for %s failed: %v", abs, err)
	}
	return marker, nil
}
