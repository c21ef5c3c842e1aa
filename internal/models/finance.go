package models

import "github.com/shopspring/decimal"

// FinanceSchemaVersion текущая версия формы Finance
const FinanceSchemaVersion = 1

// FinanceMonthsKept is how many monthly ledgers survive the month boundary.
const FinanceMonthsKept = 12

// Expense расход в месячном бюджете
type Expense struct {
	Amount   decimal.Decimal `json:"amount"`
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
}

// Ledger месячная книга расходов
type Ledger struct {
	Budget   decimal.Decimal `json:"budget"`
	Insight  *Insight        `json:"insight,omitempty"` // Insight сводка, сгенерированная при архивации
	Month    string          `json:"month"`             // Month YYYY-MM
	Notes    string          `json:"notes"`
	Expenses []Expense       `json:"expenses"`
	Archived bool            `json:"archived"`
}

// Spent returns the sum of all expenses in the ledger.
func (l *Ledger) Spent() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// Finance набор месячных книг
type Finance struct {
	Months       map[string]*Ledger `json:"months"`
	CurrentMonth string             `json:"current_month"`
}

// DefaultFinance returns finance state with no ledgers.
func DefaultFinance() Finance {
	return Finance{Months: map[string]*Ledger{}}
}
