package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/kofiasare/momo-sms-importer/pkg/database"
	"github.com/kofiasare/momo-sms-importer/pkg/processor"
)

// Snapshot is the read-only projection of the persisted store which the
// dashboard consumes. It is regenerated after each load.
type Snapshot struct {
	Users                   []*database.User
	Categories              []*database.CategoryRow
	Transactions            []*database.Transaction
	CategoriesByTransaction map[string][]database.Category
	Logs                    []*database.LogEntry
	DeadLetters             []database.DeadLetter
	Summary                 *processor.Summary
}

type Dashboard struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	Summary      summaryView       `json:"summary"`
	Users        []userView        `json:"users"`
	Categories   []categoryView    `json:"categories"`
	Transactions []transactionView `json:"transactions"`
	Logs         []logView         `json:"logs"`
	DeadLetters  []deadLetterView  `json:"dead_letters"`
}

type summaryView struct {
	Extracted    int `json:"extracted"`
	Persisted    int `json:"persisted"`
	DeadLettered int `json:"dead_lettered"`
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
}

type userView struct {
	ID              int64  `json:"user_id"`
	PhoneNumber     string `json:"phone_number"`
	UserName        string `json:"user_name,omitempty"`
	AccountType     string `json:"account_type"`
	NetworkProvider string `json:"network_provider,omitempty"`
}

type categoryView struct {
	ID          int64  `json:"category_id"`
	Name        string `json:"category_name"`
	Description string `json:"description"`
}

type transactionView struct {
	ID         string   `json:"id"`
	Timestamp  string   `json:"timestamp"`
	Amount     string   `json:"amount"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	Sender     string   `json:"sender,omitempty"`
	Receiver   string   `json:"receiver,omitempty"`
	Categories []string `json:"categories"`
}

type logView struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message"`
	Timestamp     string `json:"timestamp"`
	Outcome       string `json:"outcome"`
}

type deadLetterView struct {
	Fragment string `json:"fragment"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

const isoLayout = "2006-01-02T15:04:05"

func Build(snapshot Snapshot) *Dashboard {
	dashboard := &Dashboard{
		GeneratedAt: time.Now().UTC(),
		Users: lo.Map(snapshot.Users, func(u *database.User, _ int) userView {
			return userView{
				ID:              u.ID,
				PhoneNumber:     u.PhoneNumber,
				UserName:        u.UserName,
				AccountType:     string(u.AccountType),
				NetworkProvider: u.NetworkProvider,
			}
		}),
		Categories: lo.Map(snapshot.Categories, func(c *database.CategoryRow, _ int) categoryView {
			return categoryView{
				ID:          c.ID,
				Name:        string(c.CategoryName),
				Description: c.Description,
			}
		}),
		Transactions: lo.Map(snapshot.Transactions, func(tx *database.Transaction, _ int) transactionView {
			view := transactionView{
				ID:        tx.ID,
				Timestamp: tx.TransactionDate.Format(isoLayout),
				Amount:    tx.Amount.StringFixed(2),
				Type:      tx.TransactionType,
				Status:    string(tx.Status),
				Categories: lo.Map(snapshot.CategoriesByTransaction[tx.ID],
					func(c database.Category, _ int) string { return string(c) }),
			}

			if tx.Sender != nil {
				view.Sender = tx.Sender.PhoneNumber
			}
			if tx.Receiver != nil {
				view.Receiver = tx.Receiver.PhoneNumber
			}

			return view
		}),
		Logs: lo.Map(snapshot.Logs, func(entry *database.LogEntry, _ int) logView {
			view := logView{
				Message:   entry.LogMessage,
				Timestamp: entry.LogTimestamp.Format(isoLayout),
				Outcome:   string(entry.Outcome),
			}

			if entry.TransactionID != nil {
				view.TransactionID = *entry.TransactionID
			}

			return view
		}),
		DeadLetters: lo.Map(snapshot.DeadLetters, func(letter database.DeadLetter, _ int) deadLetterView {
			return deadLetterView{
				Fragment: letter.Fragment,
				Field:    letter.Field,
				Reason:   letter.Reason,
			}
		}),
	}

	if snapshot.Summary != nil {
		dashboard.Summary = summaryView{
			Extracted:    snapshot.Summary.Extracted,
			Persisted:    snapshot.Summary.Persisted,
			DeadLettered: snapshot.Summary.DeadLettered,
			Errors:       snapshot.Summary.Errored,
			Warnings:     snapshot.Summary.Warnings,
		}
	}

	return dashboard
}

func WriteFile(path string, dashboard *Dashboard) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create export directory")
	}

	data, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal dashboard")
	}

	return errors.Wrap(os.WriteFile(path, data, 0o644), "failed to write dashboard")
}
