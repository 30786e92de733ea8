package models

import (
	"github.com/shopspring/decimal"
)

// DataType classifies a financial record.
type DataType string

const (
	DataIncome  DataType = "income"
	DataExpense DataType = "expense"
	DataDebt    DataType = "debt"
	DataSavings DataType = "savings"
)

// FinancialRecord is one line of a user's financial picture. Records are
// immutable once ingested; amounts are annual figures.
type FinancialRecord struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	DataType DataType        `json:"data_type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	// InterestRate is a yearly percentage. Nil means the rate is unknown,
	// which is not the same as a zero rate.
	InterestRate *float64 `json:"interest_rate,omitempty"`
}

// FinancialSummary is the store's aggregate view over a user's records.
type FinancialSummary struct {
	UserID        string          `json:"user_id"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
	TotalSavings  decimal.Decimal `json:"total_savings"`
	// SavingsRate is the monthly surplus as a percentage of monthly income,
	// zero when there is no income.
	SavingsRate float64 `json:"savings_rate"`
}
