package processor

import (
	"context"
	"crypto/sha512"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"

	"github.com/kofiasare/momo-sms-importer/pkg/categorizer"
	"github.com/kofiasare/momo-sms-importer/pkg/database"
	"github.com/kofiasare/momo-sms-importer/pkg/deadletter"
	"github.com/kofiasare/momo-sms-importer/pkg/lookup"
	"github.com/kofiasare/momo-sms-importer/pkg/normalizer"
	"github.com/kofiasare/momo-sms-importer/pkg/parser"
)

const defaultWorkers = 8

type Processor struct {
	repo      Repo
	extractor Extractor
	sink      *deadletter.Sink
	index     *lookup.Index
	workers   int
}

func NewProcessor(cfg *Config) *Processor {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Processor{
		repo:      cfg.Repo,
		extractor: cfg.Extractor,
		sink:      cfg.Sink,
		index:     cfg.Index,
		workers:   workers,
	}
}

type stageResult struct {
	rec      *parser.RawRecord
	tx       *normalizer.Transaction
	category database.Category
	fired    []database.Category
	err      error
}

// Run executes one pipeline cycle over a finite batch: extract, normalize,
// categorize, persist, rebuild the index. Normalization and categorization
// are record-local and run on the pool; persistence stays on this goroutine
// so upserts for the same identifier are never concurrent.
func (p *Processor) Run(ctx context.Context, data []byte) (*Summary, error) {
	records, deadRecords, err := p.extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Extracted: len(records) + len(deadRecords)}

	if err = p.drainDeadRecords(ctx, deadRecords, summary); err != nil {
		return nil, err
	}

	results := make([]*stageResult, len(records))

	pool := workerpool.New(p.workers)
	for i, rec := range records {
		i := i
		rec := rec

		pool.Submit(func() {
			res := &stageResult{rec: rec}

			res.tx, res.err = normalizer.Normalize(rec)
			if res.err == nil {
				res.category, res.fired = categorizer.Categorize(res.tx)
			}

			results[i] = res
		})
	}
	pool.StopWait()

	for _, res := range results {
		// cancellation is safe only between records
		if ctx.Err() != nil {
			return summary, errors.Wrap(ctx.Err(), "run cancelled")
		}

		p.persistRecord(ctx, res, summary)
	}

	transactions, err := p.repo.ListTransactions(ctx)
	if err != nil {
		return summary, err
	}

	p.index.Rebuild(transactions)

	return summary, nil
}

func (p *Processor) drainDeadRecords(
	ctx context.Context,
	deadRecords []*parser.DeadRecord,
	summary *Summary,
) error {
	if len(deadRecords) == 0 {
		return nil
	}

	var letters []database.DeadLetter
	for _, d := range deadRecords {
		letters = append(letters, p.sink.Add(d.Fragment, d.Field, d.Reason))
		p.appendLog(ctx, nil, fmt.Sprintf("extraction failed on %s: %s", d.Field, d.Reason),
			database.OutcomeError)
	}

	summary.DeadLettered += len(deadRecords)

	return p.repo.AddDeadLetters(ctx, letters)
}

func (p *Processor) persistRecord(ctx context.Context, res *stageResult, summary *Summary) {
	if res.err != nil {
		field := "record"

		var validationErr *normalizer.ValidationError
		if errors.As(res.err, &validationErr) {
			field = validationErr.Field
		}

		letter := p.sink.Add(res.rec.Body, field, res.err.Error())
		if err := p.repo.AddDeadLetters(ctx, []database.DeadLetter{letter}); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to persist dead letter")
		}

		p.appendLog(ctx, nil, res.err.Error(), database.OutcomeError)
		summary.DeadLettered++

		return
	}

	tx := buildTransaction(res)

	if err := p.repo.UpsertTransaction(ctx, tx, res.category); err != nil {
		zerolog.Ctx(ctx).Debug().Str("transaction", spew.Sdump(tx)).Msg("rejected by store")

		p.appendLog(ctx, nil, fmt.Sprintf("failed to persist %s: %s", tx.ID, err),
			database.OutcomeError)
		summary.Errored++

		return
	}

	p.appendLog(ctx, &tx.ID, fmt.Sprintf("persisted as %s", res.category),
		database.OutcomeSuccess)

	if len(res.fired) > 1 {
		p.appendLog(ctx, &tx.ID, fmt.Sprintf("ambiguous match %v resolved to %s",
			res.fired, res.category), database.OutcomeWarning)
		summary.Warnings++
	}

	summary.Persisted++
}

func (p *Processor) appendLog(
	ctx context.Context,
	transactionID *string,
	message string,
	outcome database.ProcessingStatus,
) {
	err := p.repo.AppendLog(ctx, database.LogEntry{
		TransactionID: transactionID,
		LogMessage:    message,
		Outcome:       outcome,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("message", message).Msg("failed to append log entry")
	}
}

func buildTransaction(res *stageResult) *database.Transaction {
	tx := &database.Transaction{
		ID:              TransactionID(res.rec),
		TransactionDate: res.tx.Date,
		Amount:          res.tx.Amount,
		TransactionType: transactionType(res.tx),
		Status:          database.StatusCompleted,
		ReferenceCode:   res.tx.ReferenceCode,
		MessageBody:     res.tx.Body,
	}

	if res.tx.SenderPhone != "" {
		tx.Sender = &database.User{
			PhoneNumber:     res.tx.SenderPhone,
			UserName:        res.tx.SenderName,
			AccountType:     database.AccountTypePersonal,
			NetworkProvider: providerFor(res.tx.SenderPhone),
		}
	}

	if res.tx.ReceiverPhone != "" {
		tx.Receiver = &database.User{
			PhoneNumber:     res.tx.ReceiverPhone,
			UserName:        res.tx.ReceiverName,
			AccountType:     receiverAccountType(res.category),
			NetworkProvider: providerFor(res.tx.ReceiverPhone),
		}
	}

	return tx
}

// TransactionID takes the reference code from the message when present, and
// otherwise synthesizes a stable identifier from the body and raw timestamp,
// so re-ingesting the same export upserts instead of duplicating.
func TransactionID(rec *parser.RawRecord) string {
	if rec.ReferenceCode != "" {
		return rec.ReferenceCode
	}

	digest := sha512.Sum512([]byte(rec.Body + "|" + rec.Timestamp))

	return fmt.Sprintf("%x", digest)[:16]
}

func transactionType(tx *normalizer.Transaction) string {
	if tx.Template != parser.TemplateUnknown {
		return string(tx.Template)
	}

	if tx.TypeHint != "" {
		return strings.ToLower(tx.TypeHint)
	}

	return string(parser.TemplateUnknown)
}

func receiverAccountType(category database.Category) database.AccountType {
	switch category {
	case database.CategoryWithdrawal:
		return database.AccountTypeAgent
	case database.CategoryPayment:
		return database.AccountTypeMerchant
	default:
		return database.AccountTypePersonal
	}
}

var providerPrefixes = map[string]string{
	"024": "MTN", "054": "MTN", "055": "MTN", "059": "MTN",
	"020": "Vodafone", "050": "Vodafone",
	"026": "AirtelTigo", "027": "AirtelTigo", "056": "AirtelTigo", "057": "AirtelTigo",
}

func providerFor(phone string) string {
	if len(phone) < 3 {
		return ""
	}

	return providerPrefixes[phone[:3]]
}
