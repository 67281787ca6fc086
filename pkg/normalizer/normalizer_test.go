package normalizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kofiasare/momo-sms-importer/pkg/normalizer"
	"github.com/kofiasare/momo-sms-importer/pkg/parser"
)

func TestCleanAmount(t *testing.T) {
	amount, err := normalizer.CleanAmount("GHS 150.00")
	require.NoError(t, err)
	assert.Equal(t, "150.00", amount.StringFixed(2))

	amount, err = normalizer.CleanAmount("GHS 1,500.50")
	require.NoError(t, err)
	assert.Equal(t, "1500.50", amount.StringFixed(2))

	amount, err = normalizer.CleanAmount("₵25")
	require.NoError(t, err)
	assert.Equal(t, "25.00", amount.StringFixed(2))
}

func TestCleanAmount_Rejections(t *testing.T) {
	for name, input := range map[string]string{
		"negative":    "-5.00",
		"above_max":   "20,000,000.00",
		"non_numeric": "free airtime",
		"empty":       "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := normalizer.CleanAmount(input)
			require.Error(t, err)

			var validationErr *normalizer.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "amount", validationErr.Field)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	date, err := normalizer.NormalizeDate("2026-01-15 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15T10:30:00", date.Format("2006-01-02T15:04:05"))

	date, err = normalizer.NormalizeDate("1768486800000")
	require.NoError(t, err)
	assert.Equal(t, 2026, date.Year())

	_, err = normalizer.NormalizeDate("next tuesday")
	require.Error(t, err)

	var validationErr *normalizer.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "timestamp", validationErr.Field)
}

func TestNormalizePhone(t *testing.T) {
	phone, err := normalizer.NormalizePhone("+233 24 123 4567")
	require.NoError(t, err)
	assert.Equal(t, "0241234567", phone)

	phone, err = normalizer.NormalizePhone("024-123-4567")
	require.NoError(t, err)
	assert.Equal(t, "0241234567", phone)

	for _, invalid := range []string{"12345", "1241234567", "02412345678", ""} {
		_, err = normalizer.NormalizePhone(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Kofi Mensah", normalizer.NormalizeName("  kofi   MENSAH "))
	assert.Equal(t, "Ama", normalizer.NormalizeName("ama"))
	assert.Equal(t, "", normalizer.NormalizeName("   "))
}

func TestNormalize(t *testing.T) {
	rec := &parser.RawRecord{
		Timestamp:     "2026-01-15 14:20:00",
		Body:          "You have received GHS 150.00 from 0241234567",
		Template:      parser.TemplateReceived,
		Amount:        "GHS 150.00",
		Sender:        "0241234567",
		ReferenceCode: "ABC123",
	}

	tx, err := normalizer.Normalize(rec)
	require.NoError(t, err)

	assert.Equal(t, "150.00", tx.Amount.StringFixed(2))
	assert.Equal(t, "2026-01-15T14:20:00", tx.Timestamp)
	assert.Equal(t, "0241234567", tx.SenderPhone)
	assert.Empty(t, tx.SenderName)
	assert.Equal(t, "ABC123", tx.ReferenceCode)
}

func TestNormalize_CounterpartyWithName(t *testing.T) {
	rec := &parser.RawRecord{
		Timestamp: "1768486800000",
		Template:  parser.TemplateSent,
		Amount:    "GHS 50.00",
		Receiver:  "kofi mensah (+233 55 123 4567)",
	}

	tx, err := normalizer.Normalize(rec)
	require.NoError(t, err)

	assert.Equal(t, "0551234567", tx.ReceiverPhone)
	assert.Equal(t, "Kofi Mensah", tx.ReceiverName)
}

func TestNormalize_InvalidPhoneRejected(t *testing.T) {
	rec := &parser.RawRecord{
		Timestamp: "1768486800000",
		Template:  parser.TemplateReceived,
		Amount:    "GHS 10.00",
		Sender:    "12 34 56 78 90 11",
	}

	_, err := normalizer.Normalize(rec)
	require.Error(t, err)

	var validationErr *normalizer.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "sender", validationErr.Field)
}

func TestNormalize_NameOnlyCounterparty(t *testing.T) {
	rec := &parser.RawRecord{
		Timestamp: "1768486800000",
		Template:  parser.TemplatePayment,
		Amount:    "GHS 200.00",
		Receiver:  "SHOPRITE GH",
	}

	tx, err := normalizer.Normalize(rec)
	require.NoError(t, err)

	assert.Empty(t, tx.ReceiverPhone)
	assert.Equal(t, "Shoprite Gh", tx.ReceiverName)
}
