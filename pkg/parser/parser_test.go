package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kofiasare/momo-sms-importer/pkg/parser"
)

const sampleExport = `<?xml version="1.0" encoding="UTF-8"?>
<smses count="4">
  <sms protocol="0" address="MTN" date="1768486800000" readable_date="15 Jan 2026 14:20:00" body="You have received GHS 150.00 from 0241234567. Ref: ABC123" />
  <sms protocol="0" address="MTN" date="1768490400000" body="You have sent GHS 50.00 to Kofi Mensah (0551234567)" />
  <sms protocol="0" address="MTN" body="You have received GHS 20.00 from 0241234567" />
  <sms protocol="0" address="MTN" date="1768494000000" body="" />
</smses>`

func TestExtract(t *testing.T) {
	srv := parser.NewExtractor()

	records, dead, err := srv.Extract(context.TODO(), []byte(sampleExport))
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, dead, 2)

	received := records[0]
	assert.Equal(t, parser.TemplateReceived, received.Template)
	assert.Equal(t, "1768486800000", received.Timestamp)
	assert.Equal(t, "GHS 150.00", received.Amount)
	assert.Equal(t, "0241234567", received.Sender)
	assert.Equal(t, "ABC123", received.ReferenceCode)

	sent := records[1]
	assert.Equal(t, parser.TemplateSent, sent.Template)
	assert.Equal(t, "GHS 50.00", sent.Amount)
	assert.Equal(t, "Kofi Mensah (0551234567)", sent.Receiver)
	assert.Empty(t, sent.ReferenceCode)

	assert.Equal(t, "timestamp", dead[0].Field)
	assert.Contains(t, dead[0].Reason, "missing timestamp")
	assert.Equal(t, "You have received GHS 20.00 from 0241234567", dead[0].Fragment)

	assert.Equal(t, "body", dead[1].Field)
}

func TestExtract_EmptyInput(t *testing.T) {
	srv := parser.NewExtractor()

	_, _, err := srv.Extract(context.TODO(), []byte("  "))
	assert.Error(t, err)
}

func TestExtract_BrokenMarkup(t *testing.T) {
	input := `<smses count="2">
  <sms date="1768486800000" body="You have received GHS 150.00 from 0241234567" />
  <sms date="1768490400000" body="unterminated`

	srv := parser.NewExtractor()

	records, dead, err := srv.Extract(context.TODO(), []byte(input))
	require.NoError(t, err)

	assert.Len(t, records, 1)
	require.Len(t, dead, 1)
	assert.Equal(t, "document", dead[0].Field)
}

func TestExtract_UndecodableEntryKeepsRawFragment(t *testing.T) {
	input := `<smses count="2">
  <sms date="1768486800000" body="You have received GHS 150.00 from 0241234567" />
  <sms date="1768490400000" body="broken entry"><oops></sms>
</smses>`

	srv := parser.NewExtractor()

	records, dead, err := srv.Extract(context.TODO(), []byte(input))
	require.NoError(t, err)

	assert.Len(t, records, 1)

	// exactly one dead record for the bad entry, carrying its raw markup
	require.Len(t, dead, 1)
	assert.Equal(t, "markup", dead[0].Field)
	assert.Contains(t, dead[0].Fragment, "<sms date=\"1768490400000\"")
	assert.Contains(t, dead[0].Fragment, "broken entry")
}

func TestExtract_SequenceNumbers(t *testing.T) {
	srv := parser.NewExtractor()

	records, _, err := srv.Extract(context.TODO(), []byte(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, 1, records[0].Seq)
	assert.Equal(t, 2, records[1].Seq)
}
