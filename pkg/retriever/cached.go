package retriever

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ragbench/pkg/core"
)

const defaultCacheTTL = 7 * 24 * time.Hour

// ConfigKeyer reports a method's configuration fingerprint. The cache folds
// it into the key so that retrievals recorded under one configuration (a
// different model, top-k, or tool argv) are never served for another.
type ConfigKeyer interface {
	ConfigKey() string
}

// Cached wraps a method with a file-backed retrieval cache, keyed by method
// name, configuration, and question. Repeated benchmark runs against the
// same corpus then skip the expensive collaborator calls.
type Cached struct {
	Method core.Method
	Dir    string
	TTL    time.Duration
}

// NewCached builds a cache under dir (default ~/.ragbench/cache).
func NewCached(method core.Method, dir string, ttl time.Duration) (*Cached, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".ragbench", "cache")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cached{Method: method, Dir: dir, TTL: ttl}, nil
}

type cacheEntry struct {
	Retrieval core.Retrieval `json:"retrieval"`
	CachedAt  time.Time      `json:"cached_at"`
	Method    string         `json:"method"`
}

func (c *Cached) Name() string {
	return c.Method.Name()
}

func (c *Cached) Retrieve(ctx context.Context, question string) (core.Retrieval, error) {
	key := cacheKey(c.Method.Name(), methodConfig(c.Method), question)
	if retrieval, ok := c.get(key); ok {
		return retrieval, nil
	}

	retrieval, err := c.Method.Retrieve(ctx, question)
	if err != nil {
		return core.Retrieval{}, err
	}
	_ = c.set(key, retrieval)
	return retrieval, nil
}

func methodConfig(m core.Method) string {
	if keyer, ok := m.(ConfigKeyer); ok {
		return keyer.ConfigKey()
	}
	return ""
}

func cacheKey(method, config, question string) string {
	h := sha256.Sum256([]byte(strings.Join([]string{method, config, question}, "\x00")))
	return hex.EncodeToString(h[:])
}

func (c *Cached) path(key string) string {
	return filepath.Join(c.Dir, key+".json.gz")
}

func (c *Cached) get(key string) (core.Retrieval, bool) {
	p := c.path(key)
	f, err := os.Open(p)
	if err != nil {
		return core.Retrieval{}, false
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return core.Retrieval{}, false
	}
	defer gz.Close()

	var entry cacheEntry
	if err := json.NewDecoder(gz).Decode(&entry); err != nil {
		return core.Retrieval{}, false
	}
	if c.TTL > 0 && time.Since(entry.CachedAt) > c.TTL {
		_ = os.Remove(p)
		return core.Retrieval{}, false
	}
	return entry.Retrieval, true
}

func (c *Cached) set(key string, retrieval core.Retrieval) error {
	entry := cacheEntry{Retrieval: retrieval, CachedAt: time.Now(), Method: c.Method.Name()}

	f, err := os.CreateTemp(c.Dir, "tmp-*.json.gz")
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(entry); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), c.path(key)); err != nil {
		os.Remove(f.Name())
		return err
	}
	return nil
}
