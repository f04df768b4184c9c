package linter

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// bump when the payload layout changes
const cacheSchemaVersion uint16 = 1

// Key identifies one linter invocation: the command line plus the text fed
// to it on stdin.
type Key [sha256.Size]byte

// KeyFor hashes argv and text into a cache key.
func KeyFor(argv []string, text string) Key {
	h := sha256.New()
	h.Write([]byte(strings.Join(argv, "\x00")))
	h.Write([]byte{0xff})
	h.Write([]byte(text))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// cachePayload is the on-disk form of a linter run.
type cachePayload struct {
	Schema uint16
	Output []byte
}

// Cache keeps raw linter output in memory and, optionally, on disk.
// A nil *Cache is a valid no-op cache.
type Cache struct {
	mu     sync.RWMutex
	dir    string
	memory *lru.Cache[Key, []byte]
}

// NewCache creates a cache holding up to size entries in memory. dir may be
// empty to keep the cache memory-only.
func NewCache(size int, dir string) (*Cache, error) {
	memory, err := lru.New[Key, []byte](size)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Cache{dir: dir, memory: memory}, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

func (c *Cache) pathFor(key Key) string {
	// подкаталог "reports", чтобы было проще чистить
	return filepath.Join(c.dir, "reports", key.String()+".mp")
}

// Get returns cached output for key.
func (c *Cache) Get(key Key) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	if out, ok := c.memory.Get(key); ok {
		return out, true, nil
	}
	if c.dir == "" {
		return nil, false, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	c.memory.Add(key, payload.Output)
	return payload.Output, true, nil
}

// Put stores output for key.
func (c *Cache) Put(key Key, output []byte) error {
	if c == nil {
		return nil
	}
	c.memory.Add(key, output)
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&cachePayload{Schema: cacheSchemaVersion, Output: output}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

// Purge drops every cached entry.
func (c *Cache) Purge() error {
	if c == nil {
		return nil
	}
	c.memory.Purge()
	if c.dir == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "reports"))
}
