package main

import (
	"context"

	"github.com/kofiasare/momo-sms-importer/pkg/database"
)

type TransactionStore interface {
	GetTransaction(ctx context.Context, id string) (*database.Transaction, error)
	ListTransactions(ctx context.Context) ([]*database.Transaction, error)
	UpsertTransaction(ctx context.Context, tx *database.Transaction, category database.Category) error
	UpdateTransaction(ctx context.Context, id string, patch map[string]any) (*database.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// Lookup is the read side of the in-memory index. The handler only consumes
// lookups; maintaining the index stays with whoever persists.
type Lookup interface {
	Get(id string) (*database.Transaction, bool)
	Insert(tx *database.Transaction)
	Remove(id string)
}
