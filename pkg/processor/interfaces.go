package processor

import (
	"context"

	"github.com/kofiasare/momo-sms-importer/pkg/database"
	"github.com/kofiasare/momo-sms-importer/pkg/parser"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package processor_test -source=interfaces.go

type Repo interface {
	UpsertTransaction(ctx context.Context, tx *database.Transaction, category database.Category) error
	AppendLog(ctx context.Context, entry database.LogEntry) error
	AddDeadLetters(ctx context.Context, letters []database.DeadLetter) error
	ListTransactions(ctx context.Context) ([]*database.Transaction, error)
}

type Extractor interface {
	Extract(ctx context.Context, data []byte) ([]*parser.RawRecord, []*parser.DeadRecord, error)
}
