package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type Extractor struct {
}

func NewExtractor() *Extractor {
	return &Extractor{}
}

type smsEntry struct {
	Date         string `xml:"date,attr"`
	Body         string `xml:"body,attr"`
	ReadableDate string `xml:"readable_date,attr"`
	Address      string `xml:"address,attr"`
	Type         string `xml:"transaction_type,attr"`
}

// Extract walks the SMS export in a single pass and produces one RawRecord
// per well-formed entry. Entries missing a timestamp or body, and entries
// whose markup cannot be decoded, become DeadRecords instead; one bad entry
// never aborts the batch.
func (e *Extractor) Extract(
	ctx context.Context,
	data []byte,
) ([]*RawRecord, []*DeadRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, errors.New("empty input")
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))

	var records []*RawRecord
	var dead []*DeadRecord
	seq := 0

	for {
		offset := decoder.InputOffset()

		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// the decoder cannot resync after a syntax error, so the
			// remaining fragment is preserved as a single dead record
			dead = append(dead, &DeadRecord{
				Fragment: string(data),
				Field:    "document",
				Reason:   err.Error(),
			})
			break
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "sms" {
			continue
		}

		seq++

		var entry smsEntry
		if err = decoder.DecodeElement(&entry, &start); err != nil {
			// keep the raw element text, decoded attributes may still be empty
			dead = append(dead, &DeadRecord{
				Fragment: strings.TrimSpace(string(data[offset:decoder.InputOffset()])),
				Field:    "markup",
				Reason:   err.Error(),
			})

			zerolog.Ctx(ctx).Warn().Err(err).Int("seq", seq).Msg("undecodable sms entry")

			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				// the decoder cannot resync, and this entry is already
				// accounted for
				break
			}

			continue
		}

		if reason, field := structuralReject(entry); reason != "" {
			dead = append(dead, &DeadRecord{
				Fragment: entry.Body,
				Field:    field,
				Reason:   reason,
			})
			continue
		}

		rec := &RawRecord{
			Seq:       seq,
			Timestamp: entry.Date,
			Body:      strings.TrimSpace(entry.Body),
			TypeHint:  entry.Type,
		}
		matchTemplate(rec)

		records = append(records, rec)
	}

	return records, dead, nil
}

func structuralReject(entry smsEntry) (reason, field string) {
	if strings.TrimSpace(entry.Date) == "" {
		return "missing timestamp attribute", "timestamp"
	}

	if strings.TrimSpace(entry.Body) == "" {
		return "missing message body", "body"
	}

	return "", ""
}
