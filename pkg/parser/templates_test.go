package parser_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kofiasare/momo-sms-importer/pkg/parser"
)

func extractOne(t *testing.T, body string) *parser.RawRecord {
	t.Helper()

	input := fmt.Sprintf(`<smses count="1"><sms date="1768486800000" body=%q /></smses>`, body)

	records, dead, err := parser.NewExtractor().Extract(context.TODO(), []byte(input))
	require.NoError(t, err)
	require.Empty(t, dead)
	require.Len(t, records, 1)

	return records[0]
}

func TestTemplatePayment(t *testing.T) {
	rec := extractOne(t, "Your payment of GHS 200.00 to SHOPRITE GH has been completed. TxId: 99887766")

	assert.Equal(t, parser.TemplatePayment, rec.Template)
	assert.Equal(t, "GHS 200.00", rec.Amount)
	assert.Equal(t, "SHOPRITE GH", rec.Receiver)
	assert.Equal(t, "99887766", rec.ReferenceCode)
}

func TestTemplateWithdrawal(t *testing.T) {
	rec := extractOne(t, "You have withdrawn GHS 300.00 from agent 0249876543. Fee was GHS 2.00")

	assert.Equal(t, parser.TemplateWithdrawal, rec.Template)
	assert.Equal(t, "GHS 300.00", rec.Amount)
	assert.Equal(t, "0249876543", rec.Receiver)
}

func TestTemplateAirtime(t *testing.T) {
	rec := extractOne(t, "Airtime purchase of GHS 10.00 completed. Transaction Id: 777111")

	assert.Equal(t, parser.TemplateAirtime, rec.Template)
	assert.Equal(t, "GHS 10.00", rec.Amount)
	assert.Empty(t, rec.Sender)
	assert.Empty(t, rec.Receiver)
	assert.Equal(t, "777111", rec.ReferenceCode)
}

func TestTemplateUnknown(t *testing.T) {
	rec := extractOne(t, "Cash out of GHS 75.00 at agent point")

	assert.Equal(t, parser.TemplateUnknown, rec.Template)
	assert.Equal(t, "GHS 75.00", rec.Amount)
}

func TestTemplateUnknown_NoAmount(t *testing.T) {
	rec := extractOne(t, "Welcome to the MoMo service")

	assert.Equal(t, parser.TemplateUnknown, rec.Template)
	assert.Empty(t, rec.Amount)
}

func TestTemplateReceived_WithName(t *testing.T) {
	rec := extractOne(t, "You have received GHS 1,500.00 from Ama Serwaa (0204445566) via MTN")

	assert.Equal(t, parser.TemplateReceived, rec.Template)
	assert.Equal(t, "GHS 1,500.00", rec.Amount)
	assert.Equal(t, "Ama Serwaa (0204445566)", rec.Sender)
}
