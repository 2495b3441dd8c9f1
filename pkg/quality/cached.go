package quality

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of score results retained by Cached.
const DefaultCacheSize = 1024

// Cached memoizes score results by content hash. Identical content within the
// same domain always scores identically, so repeated diffs and comparisons of
// the same blobs skip the underlying scorer.
type Cached struct {
	inner Scorer
	cache *lru.Cache[string, Metrics]
}

// NewCached wraps inner with an LRU cache of the given size. Non-positive
// sizes fall back to DefaultCacheSize.
func NewCached(inner Scorer, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, Metrics](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Score implements Scorer. Errors are never cached.
func (c *Cached) Score(ctx context.Context, text string, sc ScoreContext) (Metrics, error) {
	key := cacheKey(text, sc)
	if m, ok := c.cache.Get(key); ok {
		return m, nil
	}

	m, err := c.inner.Score(ctx, text, sc)
	if err != nil {
		return m, err
	}

	c.cache.Add(key, m)
	return m, nil
}

// Len reports the number of cached entries.
func (c *Cached) Len() int {
	return c.cache.Len()
}

func cacheKey(text string, sc ScoreContext) string {
	h := sha256.New()
	h.Write([]byte(sc.Domain))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
