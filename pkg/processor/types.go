package processor

import (
	"github.com/kofiasare/momo-sms-importer/pkg/deadletter"
	"github.com/kofiasare/momo-sms-importer/pkg/lookup"
)

type Config struct {
	Repo      Repo
	Extractor Extractor
	Sink      *deadletter.Sink
	Index     *lookup.Index
	Workers   int
}

// Summary tallies the terminal outcomes of one pipeline run. Extracted counts
// every source entry, well-formed or not, and each one lands in exactly one of
// Persisted, DeadLettered or Errored.
type Summary struct {
	Extracted    int
	Persisted    int
	DeadLettered int
	Errored      int
	Warnings     int
}
