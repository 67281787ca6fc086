package categorizer

import (
	"strings"

	"github.com/samber/lo"

	"github.com/kofiasare/momo-sms-importer/pkg/database"
	"github.com/kofiasare/momo-sms-importer/pkg/normalizer"
	"github.com/kofiasare/momo-sms-importer/pkg/parser"
)

// template tags map directly onto categories; the lookup is total for the
// five concrete templates.
var templateCategories = map[parser.Template]database.Category{
	parser.TemplateReceived:   database.CategoryReceived,
	parser.TemplateSent:       database.CategoryTransfer,
	parser.TemplateAirtime:    database.CategoryAirtime,
	parser.TemplatePayment:    database.CategoryPayment,
	parser.TemplateWithdrawal: database.CategoryWithdrawal,
}

type keywordRule struct {
	category database.Category
	keywords []string
}

// Fallback rules for untagged messages, in priority order. When several
// rules fire the first one wins, regardless of input order.
var keywordRules = []keywordRule{
	{database.CategoryWithdrawal, []string{"withdraw", "cash out", "cash-out", "agent"}},
	{database.CategoryPayment, []string{"payment", "paid", "merchant", "bill"}},
	{database.CategoryTransfer, []string{"sent", "transfer"}},
	{database.CategoryAirtime, []string{"airtime", "top up", "topup", "bundle"}},
	{database.CategoryReceived, []string{"received", "credited"}},
}

// Categorize assigns exactly one category. It is a pure function of the
// transaction content: identical input always yields the identical category.
// The second return value lists every rule which fired, so callers can log
// ambiguous matches.
func Categorize(tx *normalizer.Transaction) (database.Category, []database.Category) {
	if category, ok := templateCategories[tx.Template]; ok {
		return category, []database.Category{category}
	}

	body := strings.ToLower(tx.Body)

	matched := lo.FilterMap(keywordRules, func(rule keywordRule, _ int) (database.Category, bool) {
		fired := lo.SomeBy(rule.keywords, func(keyword string) bool {
			return strings.Contains(body, keyword)
		})

		return rule.category, fired
	})

	if len(matched) == 0 {
		return database.CategoryOther, nil
	}

	return matched[0], matched
}
