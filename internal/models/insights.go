package models

import "github.com/shopspring/decimal"

// InsightsSchemaVersion текущая версия формы Insights
const InsightsSchemaVersion = 1

// InsightKindMonthSummary marks insights produced when a ledger is archived.
const InsightKindMonthSummary = "month_summary"

// Insight сгенерированная сводка по данным пользователя
type Insight struct {
	CategoryTotals map[string]decimal.Decimal `json:"category_totals"`
	Total          decimal.Decimal            `json:"total"`
	Budget         decimal.Decimal            `json:"budget"`
	Remaining      decimal.Decimal            `json:"remaining"`
	ID             string                     `json:"id"`
	Kind           string                     `json:"kind"`
	Month          string                     `json:"month,omitempty"`
	Summary        string                     `json:"summary"`
	GeneratedAt    int64                      `json:"generated_at"`
}

// Insights лента сгенерированных сводок
type Insights struct {
	Items []Insight `json:"items"`
}

// DefaultInsights returns an empty feed.
func DefaultInsights() Insights {
	return Insights{Items: []Insight{}}
}
