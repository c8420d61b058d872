package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
)

// currentCacheVersion defines the version of the cache schema.
// Bump it whenever the scoring prompt changes.
const currentCacheVersion = 1

// cacheMaxAge is how long a cached score stays valid.
const cacheMaxAge = 7 * 24 * time.Hour

// checkCacheHit attempts to retrieve and validate a cached score.
func checkCacheHit(store contract.CacheStore, key string) *schema.ScoreResponse {
	if store == nil {
		return nil
	}

	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheMaxAge {
			var result schema.ScoreResponse
			if err := json.Unmarshal(data, &result); err == nil {
				return &result // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// storeResult writes a parsed score to the cache. Failures are ignored.
func storeResult(store contract.CacheStore, key string, result schema.ScoreResponse) {
	if store == nil {
		return
	}
	if data, err := json.Marshal(result); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
}

// generateCacheKey creates a content-addressed key for one scoring request.
func generateCacheKey(provider schema.Provider, model, name, ext, content string) string {
	contentHash := sha256.Sum256([]byte(content))
	key := fmt.Sprintf("%s:%s:%d:%s:%s:%x",
		provider,
		model,
		currentCacheVersion,
		name,
		ext,
		contentHash,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
