package lookup

import (
	"sync"

	"github.com/kofiasare/momo-sms-importer/pkg/database"
)

// Index maps transaction identifiers to transactions for O(1) expected-time
// point lookup. Rebuild swaps the whole map under the lock, so readers see
// either the previous index or the complete new one, never a partial state.
type Index struct {
	mu   sync.RWMutex
	byID map[string]*database.Transaction
}

func NewIndex() *Index {
	return &Index{
		byID: map[string]*database.Transaction{},
	}
}

func (i *Index) Rebuild(transactions []*database.Transaction) {
	next := make(map[string]*database.Transaction, len(transactions))
	for _, tx := range transactions {
		next[tx.ID] = tx
	}

	i.mu.Lock()
	i.byID = next
	i.mu.Unlock()
}

func (i *Index) Get(id string) (*database.Transaction, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	tx, ok := i.byID[id]

	return tx, ok
}

func (i *Index) Insert(tx *database.Transaction) {
	i.mu.Lock()
	i.byID[tx.ID] = tx
	i.mu.Unlock()
}

func (i *Index) Remove(id string) {
	i.mu.Lock()
	delete(i.byID, id)
	i.mu.Unlock()
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.byID)
}

// LinearSearch is the O(n) reference lookup, kept as the baseline and as the
// fallback when no index has been built yet. It must agree with Index.Get
// for every identifier, found or not.
func LinearSearch(transactions []*database.Transaction, id string) (*database.Transaction, bool) {
	for _, tx := range transactions {
		if tx.ID == id {
			return tx, true
		}
	}

	return nil, false
}
