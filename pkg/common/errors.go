package common

import "github.com/cockroachdb/errors"

var (
	ErrNotFound = errors.New("transaction not found")
	ErrConflict = errors.New("conflicting transaction data")
)
