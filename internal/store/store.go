// Package store persists product arrivals and estimate runs in SQL backends.
package store

import (
	"sync"

	"github.com/huangsam/leadtime/internal/contract"
)

// Registry holds the message and run stores.
type Registry struct {
	sync.RWMutex // Protects the store pointers during initialization
	messages     contract.MessageStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &Registry{} // Compile-time check

// GetMessageStore returns the MessageStore, or nil when it was not initialized.
func (mgr *Registry) GetMessageStore() contract.MessageStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.messages
}

// GetRunStore returns the RunStore, or nil when it was not initialized.
func (mgr *Registry) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
