package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kofiasare/momo-sms-importer/pkg/parser"
)

// ValidationError names the field which failed a normalization rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Transaction is a fully normalized record. Every field has passed
// validation; partially normalized records never leave this package.
type Transaction struct {
	Template      parser.Template
	TypeHint      string
	Amount        decimal.Decimal
	Timestamp     string
	Date          time.Time
	SenderPhone   string
	SenderName    string
	ReceiverPhone string
	ReceiverName  string
	ReferenceCode string
	Body          string
}

var maxAmount = decimal.RequireFromString("10000000")

const isoLayout = "2006-01-02T15:04:05"

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"2 Jan 2006 15:04:05",
}

var (
	amountRegex    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	nonDigitRegex  = regexp.MustCompile(`\D`)
	phoneHintRegex = regexp.MustCompile(`\d[\d\s().+-]{6,}`)
	bracketRegex   = regexp.MustCompile(`^(.*?)\(([^)]+)\)\s*$`)
	spaceRegex     = regexp.MustCompile(`\s+`)
)

// country codes stripped from phone numbers before the 0XXXXXXXXX check
var countryCodes = []string{"233", "250"}

// Normalize converts one raw record into a Transaction, or fails with a
// ValidationError naming the offending field.
func Normalize(rec *parser.RawRecord) (*Transaction, error) {
	amount, err := CleanAmount(rec.Amount)
	if err != nil {
		return nil, err
	}

	date, err := NormalizeDate(rec.Timestamp)
	if err != nil {
		return nil, err
	}

	senderPhone, senderName, err := normalizeParty("sender", rec.Sender)
	if err != nil {
		return nil, err
	}

	receiverPhone, receiverName, err := normalizeParty("receiver", rec.Receiver)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		Template:      rec.Template,
		TypeHint:      rec.TypeHint,
		Amount:        amount,
		Timestamp:     date.Format(isoLayout),
		Date:          date,
		SenderPhone:   senderPhone,
		SenderName:    senderName,
		ReceiverPhone: receiverPhone,
		ReceiverName:  receiverName,
		ReferenceCode: rec.ReferenceCode,
		Body:          rec.Body,
	}, nil
}

// CleanAmount strips currency markers and thousands separators, then parses
// a non-negative decimal within the configured range.
func CleanAmount(input string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	cleaned = strings.TrimFunc(cleaned, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '-' && r != '.'
	})
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || !amountRegex.MatchString(cleaned) {
		return decimal.Zero, newValidationError("amount", fmt.Sprintf("not a numeric amount: %q", input))
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, newValidationError("amount", err.Error())
	}

	if amount.IsNegative() {
		return decimal.Zero, newValidationError("amount", "negative amount")
	}

	if amount.GreaterThan(maxAmount) {
		return decimal.Zero, newValidationError("amount", fmt.Sprintf("amount %s exceeds maximum %s", amount, maxAmount))
	}

	return amount, nil
}

// NormalizeDate accepts epoch milliseconds (the export's date attribute) or
// one of the fixed source layouts.
func NormalizeDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, newValidationError("timestamp", "empty timestamp")
	}

	if millis, err := strconv.ParseInt(input, 10, 64); err == nil {
		return time.UnixMilli(millis).UTC(), nil
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, input); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, newValidationError("timestamp", fmt.Sprintf("unparsable date: %q", input))
}

// NormalizePhone strips separators and country-code prefixes and requires
// the canonical 0XXXXXXXXX form.
func NormalizePhone(input string) (string, error) {
	digits := nonDigitRegex.ReplaceAllString(input, "")

	for _, code := range countryCodes {
		if len(digits) == len(code)+9 && strings.HasPrefix(digits, code) {
			digits = "0" + digits[len(code):]
			break
		}
	}

	if len(digits) != 10 || digits[0] != '0' {
		return "", newValidationError("phone_number", fmt.Sprintf("not a valid phone number: %q", input))
	}

	return digits, nil
}

// NormalizeName trims, collapses internal whitespace and title-cases.
func NormalizeName(input string) string {
	words := spaceRegex.Split(strings.TrimSpace(input), -1)

	for i, word := range words {
		if word == "" {
			continue
		}

		runes := []rune(strings.ToLower(word))
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}

// normalizeParty splits a raw counterparty fragment into phone and display
// name. "Kofi Mensah (0241234567)" carries both; a bare phone or a bare name
// carries one. A fragment which looks like a phone number must normalize,
// otherwise the record is rejected on that field.
func normalizeParty(field, input string) (phone, name string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", nil
	}

	if matches := bracketRegex.FindStringSubmatch(input); matches != nil {
		namePart := strings.TrimSpace(matches[1])
		phonePart := strings.TrimSpace(matches[2])

		phone, err = NormalizePhone(phonePart)
		if err != nil {
			return "", "", newValidationError(field, fmt.Sprintf("invalid phone in %q", input))
		}

		return phone, NormalizeName(namePart), nil
	}

	if phoneHintRegex.MatchString(input) {
		phone, err = NormalizePhone(input)
		if err != nil {
			return "", "", newValidationError(field, fmt.Sprintf("invalid phone in %q", input))
		}

		return phone, "", nil
	}

	return "", NormalizeName(input), nil
}
