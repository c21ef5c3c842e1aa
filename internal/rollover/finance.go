package rollover

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/lifedash/internal/models"
)

const uncategorized = "uncategorized"

// rollFinance handles the month boundary. It returns whether finance changed
// and the insight generated for an archived ledger, if any.
func (e *Engine) rollFinance(fin *models.Finance, now time.Time, lastReset string, report *Report) (bool, *models.Insight) {
	month := now.Format(models.MonthLayout)
	changed := false

	if fin.Months == nil {
		fin.Months = map[string]*models.Ledger{}
	}

	previous := fin.CurrentMonth
	if previous == "" && len(lastReset) >= len(models.MonthLayout) {
		previous = lastReset[:len(models.MonthLayout)]
	}

	var insight *models.Insight
	prior := fin.Months[previous]

	if previous != "" && previous != month && prior != nil && !prior.Archived {
		generated := e.monthInsight(prior, now)
		prior.Archived = true
		prior.Insight = &generated
		insight = &generated
		report.ArchivedMonth = previous
		changed = true
	}

	if _, ok := fin.Months[month]; !ok {
		ledger := &models.Ledger{
			Month:    month,
			Budget:   decimal.Zero,
			Expenses: []models.Expense{},
		}
		if prior != nil {
			ledger.Budget = prior.Budget
			ledger.Notes = prior.Notes
		}
		fin.Months[month] = ledger
		changed = true
	}

	if fin.CurrentMonth != month {
		fin.CurrentMonth = month
		changed = true
	}

	if keepRecentMonths(fin, models.FinanceMonthsKept) > 0 {
		changed = true
	}

	return changed, insight
}

// monthInsight строит сводку по категориям для архивируемой книги
func (e *Engine) monthInsight(ledger *models.Ledger, now time.Time) models.Insight {
	totals := map[string]decimal.Decimal{}
	for _, exp := range ledger.Expenses {
		category := exp.Category
		if category == "" {
			category = uncategorized
		}
		totals[category] = totals[category].Add(exp.Amount)
	}

	spent := ledger.Spent()
	remaining := ledger.Budget.Sub(spent)

	summary := fmt.Sprintf("%s: spent %s of %s across %d expenses",
		ledger.Month, spent.StringFixed(2), ledger.Budget.StringFixed(2), len(ledger.Expenses))
	if top, amount, ok := topCategory(totals); ok {
		summary += fmt.Sprintf(", top category %s (%s)", top, amount.StringFixed(2))
	}
	if remaining.IsNegative() {
		summary += fmt.Sprintf(", over budget by %s", remaining.Neg().StringFixed(2))
	}

	return models.Insight{
		ID:             e.newID(),
		Kind:           models.InsightKindMonthSummary,
		Month:          ledger.Month,
		Summary:        summary,
		CategoryTotals: totals,
		Total:          spent,
		Budget:         ledger.Budget,
		Remaining:      remaining,
		GeneratedAt:    now.UnixMilli(),
	}
}

func topCategory(totals map[string]decimal.Decimal) (string, decimal.Decimal, bool) {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		best   string
		amount decimal.Decimal
		found  bool
	)
	for _, name := range names {
		if !found || totals[name].GreaterThan(amount) {
			best, amount, found = name, totals[name], true
		}
	}
	return best, amount, found
}

// keepRecentMonths удаляет книги старше n последних месяцев
func keepRecentMonths(fin *models.Finance, n int) int {
	if len(fin.Months) <= n {
		return 0
	}

	months := make([]string, 0, len(fin.Months))
	for m := range fin.Months {
		months = append(months, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	removed := 0
	for _, m := range months[n:] {
		if m == fin.CurrentMonth {
			continue
		}
		delete(fin.Months, m)
		removed++
	}
	return removed
}

// pruneFinance удаляет книги месяцев раньше месяца отсечки, кроме текущей
func pruneFinance(fin *models.Finance, cutoff string) int {
	cutoffMonth := cutoff[:len(models.MonthLayout)]

	removed := 0
	for m := range fin.Months {
		if m < cutoffMonth && m != fin.CurrentMonth {
			delete(fin.Months, m)
			removed++
		}
	}
	return removed
}
