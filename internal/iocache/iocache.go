// Package iocache is for caching oracle calls and recording scan history.
package iocache

import (
	"sync"

	"github.com/huangsam/aieval/internal/contract"
)

// CacheStoreManager manages the score cache and the history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	score        contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetScoreStore returns the score CacheStore, or nil when caching is off.
func (mgr *CacheStoreManager) GetScoreStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.score
}

// GetHistoryStore returns the HistoryStore, or nil when tracking is off.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
