package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"example.com/scholarshield/backend/internal/cache"
	"example.com/scholarshield/backend/internal/models"
)

// Cached оборачивает Searcher кэшем результатов с ограниченным временем жизни.
type Cached struct {
	inner Searcher
	store cache.Cache
	ttl   time.Duration
}

// NewCached создает кэширующую обертку над поисковым клиентом.
func NewCached(inner Searcher, store cache.Cache, ttl time.Duration) *Cached {
	return &Cached{
		inner: inner,
		store: store,
		ttl:   ttl,
	}
}

// Search возвращает закэшированные фрагменты или обращается к внутреннему клиенту.
func (c *Cached) Search(ctx context.Context, query, index string, top int) ([]models.PolicySnippet, error) {
	key := searchCacheKey(query, index, top)
	if raw, ok := c.store.Get(ctx, key); ok {
		var snippets []models.PolicySnippet
		if err := json.Unmarshal([]byte(raw), &snippets); err == nil {
			return snippets, nil
		}
	}

	snippets, err := c.inner.Search(ctx, query, index, top)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(snippets); err == nil {
		_ = c.store.Set(ctx, key, string(encoded), c.ttl)
	}
	return snippets, nil
}

func searchCacheKey(query, index string, top int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("search:%s:%d:%x", index, top, sum[:8])
}
