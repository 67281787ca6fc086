package main

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kofiasare/momo-sms-importer/pkg/database"
)

const isoLayout = "2006-01-02T15:04:05"

type transactionJSON struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender,omitempty"`
	Receiver  string          `json:"receiver,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
}

type transactionPatch struct {
	Sender    *string          `json:"sender"`
	Receiver  *string          `json:"receiver"`
	Amount    *decimal.Decimal `json:"amount"`
	Type      *string          `json:"type"`
	Timestamp *string          `json:"timestamp"`
	Status    *string          `json:"status"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func toJSON(tx *database.Transaction) transactionJSON {
	view := transactionJSON{
		ID:        tx.ID,
		Amount:    tx.Amount,
		Type:      tx.TransactionType,
		Timestamp: tx.TransactionDate.Format(isoLayout),
	}

	if tx.Sender != nil {
		view.Sender = tx.Sender.PhoneNumber
	}
	if tx.Receiver != nil {
		view.Receiver = tx.Receiver.PhoneNumber
	}

	return view
}

func parseTimestamp(input string) (time.Time, error) {
	return time.Parse(isoLayout, input)
}
