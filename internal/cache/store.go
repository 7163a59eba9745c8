// Package cache is a small TTL cache on disk: one JSON file per
// (namespace, id) pair, freshness taken from the file's mtime.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is what the report uses unless told otherwise.
const DefaultTTL = 24 * time.Hour

// ErrInvalidKey is returned when a namespace or id can't be mapped to a file
// under the store root.
var ErrInvalidKey = errors.New("invalid cache key")

// keyEscaper is injective: "_" is escaped first so an encoded "__" can only
// come from "/".
var keyEscaper = strings.NewReplacer("_", "_5F", "/", "__", "\\", "_5C")

type Store struct {
	root  string
	log   logrus.FieldLogger
	clock clockwork.Clock
}

type Option func(*Store)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// New returns a store rooted at root. The directory is created lazily on the
// first Save.
func New(root string, opts ...Option) *Store {
	s := &Store{
		root:  root,
		log:   logrus.StandardLogger(),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

func sanitize(segment string) (string, error) {
	safe := keyEscaper.Replace(segment)
	if safe == "" || safe == "." || safe == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, segment)
	}
	return safe, nil
}

// Path returns root/<namespace>/<id>.json. In both segments "/" becomes "__",
// "\\" becomes "_5C" and "_" becomes "_5F", so distinct keys never share a file.
func (s *Store) Path(namespace, id string) (string, error) {
	ns, err := sanitize(namespace)
	if err != nil {
		return "", err
	}
	name, err := sanitize(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, ns, name+".json"), nil
}

// Load reads the entry for (namespace, id) into out. It reports false when
// there is no entry or the entry is older than ttl; expired entries are
// removed. *string and *[]byte receive the stored bytes verbatim, anything
// else is decoded as JSON.
//
// A nil store always misses.
func (s *Store) Load(namespace, id string, ttl time.Duration, out any) (bool, error) {
	if s == nil {
		return false, nil
	}

	path, err := s.Path(namespace, id)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat cache entry %s: %w", path, err)
	}

	age := s.clock.Since(info.ModTime())
	if age > ttl {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("remove expired cache entry %s: %w", path, err)
		}
		s.log.WithFields(logrus.Fields{
			"namespace": namespace,
			"id":        id,
			"age":       age.Round(time.Second),
			"ttl":       ttl,
		}).Debug("Cache expired, entry removed")
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read cache entry %s: %w", path, err)
	}

	switch v := out.(type) {
	case *string:
		*v = string(data)
	case *[]byte:
		*v = data
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("decode cache entry %s: %w", path, err)
		}
	}

	s.log.WithField("path", path).Debug("Cache hit")
	return true, nil
}

// Save replaces the entry for (namespace, id). Strings and byte slices are
// written as-is, other payloads as compact JSON. The entry is written to a
// temp file in the same directory and renamed into place.
//
// Saving to a nil store is a no-op.
func (s *Store) Save(namespace, id string, payload any) error {
	if s == nil {
		return nil
	}

	path, err := s.Path(namespace, id)
	if err != nil {
		return err
	}

	var data []byte
	switch v := payload.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		data, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode cache entry %s: %w", path, err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %s: %w", dir, err)
	}

	if err := writeAtomic(dir, path, data); err != nil {
		return err
	}

	s.log.WithField("path", path).Debug("Cache saved")
	return nil
}

func writeAtomic(dir, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod cache entry %s: %w", path, err)
	}
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache entry %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close cache entry %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace cache entry %s: %w", path, err)
	}
	return nil
}
