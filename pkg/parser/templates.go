package parser

import (
	"regexp"
	"strings"
)

// Each message template carries its own extraction function. Templates are
// evaluated in a fixed order and the first match wins; bodies matching none
// are tagged TemplateUnknown and left to the keyword fallback downstream.
type template struct {
	name    Template
	pattern *regexp.Regexp
	extract func(matches []string, rec *RawRecord)
}

// Amounts keep whatever currency marker the message carries; the normalizer
// strips it. Counterparty captures stop at sentence punctuation or at the
// filler words which introduce trailing clauses ("... has been completed").
const (
	amount = `((?:[A-Z]{3}\s*|₵\s*|\$\s*)?\d[\d,]*(?:\.\d+)?)`
	tail   = `(?:\s+(?:has|was|is|on|via|completed|successful)\b|[.,]|$)`
)

var (
	receivedRegex   = regexp.MustCompile(`(?i)you have received\s+` + amount + `\s+from\s+([^.,]+?)` + tail)
	sentRegex       = regexp.MustCompile(`(?i)(?:you have\s+)?sent\s+` + amount + `\s+to\s+([^.,]+?)` + tail)
	airtimeRegex    = regexp.MustCompile(`(?i)airtime purchase(?:\s+of)?\s+` + amount + tail)
	paymentRegex    = regexp.MustCompile(`(?i)(?:your\s+)?payment of\s+` + amount + `\s+to\s+([^.,]+?)` + tail)
	withdrawalRegex = regexp.MustCompile(`(?i)withdraw(?:n|al of)\s+` + amount + `\s+from\s+(?:agent\s+)?([^.,]+?)` + tail)

	referenceRegex = regexp.MustCompile(`(?i)\b(?:reference|ref|transaction id|txid)\b\s*[:#]?\s*([A-Za-z0-9]+)`)

	// currency-marked amounts only, so phone numbers are never mistaken for
	// money when no template matched
	looseAmountRegex = regexp.MustCompile(`(?i)(?:GHS|RWF|KES|UGX|₵|\$)\s*\d[\d,]*(?:\.\d+)?`)
)

var templates = []template{
	{
		name:    TemplateReceived,
		pattern: receivedRegex,
		extract: func(matches []string, rec *RawRecord) {
			rec.Amount = trimFragment(matches[1])
			rec.Sender = trimFragment(matches[2])
		},
	},
	{
		name:    TemplateWithdrawal,
		pattern: withdrawalRegex,
		extract: func(matches []string, rec *RawRecord) {
			rec.Amount = trimFragment(matches[1])
			rec.Receiver = trimFragment(matches[2])
		},
	},
	{
		name:    TemplatePayment,
		pattern: paymentRegex,
		extract: func(matches []string, rec *RawRecord) {
			rec.Amount = trimFragment(matches[1])
			rec.Receiver = trimFragment(matches[2])
		},
	},
	{
		name:    TemplateAirtime,
		pattern: airtimeRegex,
		extract: func(matches []string, rec *RawRecord) {
			rec.Amount = trimFragment(matches[1])
		},
	},
	{
		name:    TemplateSent,
		pattern: sentRegex,
		extract: func(matches []string, rec *RawRecord) {
			rec.Amount = trimFragment(matches[1])
			rec.Receiver = trimFragment(matches[2])
		},
	},
}

func matchTemplate(rec *RawRecord) {
	rec.Template = TemplateUnknown

	for _, tpl := range templates {
		matches := tpl.pattern.FindStringSubmatch(rec.Body)
		if matches == nil {
			continue
		}

		rec.Template = tpl.name
		tpl.extract(matches, rec)
		break
	}

	if rec.Template == TemplateUnknown {
		rec.Amount = looseAmountRegex.FindString(rec.Body)
	}

	if refMatch := referenceRegex.FindStringSubmatch(rec.Body); refMatch != nil {
		rec.ReferenceCode = refMatch[1]
	}
}

func trimFragment(input string) string {
	return strings.Trim(strings.TrimSpace(input), ".,;")
}
