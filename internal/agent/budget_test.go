package agent

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/models"
)

func TestBudgetPriorityScore(t *testing.T) {
	cases := []struct {
		name     string
		income   float64
		expenses float64
		want     int
	}{
		{"spending more than earning", 10000, 10500, 10},
		{"exactly break even", 10000, 10000, 10},
		{"very tight", 10000, 9600, 8},
		{"moderate pressure", 10000, 8500, 6},
		{"reasonable", 10000, 7500, 4},
		{"lots of room", 10000, 5000, 2},
		{"no income", 0, 3000, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := budgetPriorityScore(decimal.NewFromFloat(tc.income), decimal.NewFromFloat(tc.expenses))
			if got != tc.want {
				t.Fatalf("budgetPriorityScore(%v, %v) = %d, want %d", tc.income, tc.expenses, got, tc.want)
			}
		})
	}
}

// Reference scenario: 120,000/yr income against 102,000/yr expenses lands in
// the 85-95% band.
func TestBudgetAnalyzeReferenceScenario(t *testing.T) {
	gen := &stubGenerator{reply: "budget narrative"}
	analyzer := NewBudgetOptimizer(gen, zap.NewNop())

	records := []models.FinancialRecord{
		record(models.DataIncome, "Salary", 120000),
		record(models.DataExpense, "Housing", 48000),
		record(models.DataExpense, "Food", 30000),
		record(models.DataExpense, "Transportation", 24000),
	}

	result, err := analyzer.Analyze(context.Background(), records, &Context{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := result.Metrics["monthly_income"]; got != 10000 {
		t.Errorf("monthly_income = %f, want 10000", got)
	}
	if got := result.Metrics["monthly_expenses"]; got != 8500 {
		t.Errorf("monthly_expenses = %f, want 8500", got)
	}
	if got := result.Metrics["expense_ratio"]; got != 85 {
		t.Errorf("expense_ratio = %f, want 85", got)
	}
	if result.PriorityScore != 6 {
		t.Errorf("priority score = %d, want 6 for the 85-95%% band", result.PriorityScore)
	}
}

func TestBudgetRecommendationRules(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	analyzer := NewBudgetOptimizer(gen, zap.NewNop())

	// Housing 40% of income, transportation 20%, food 15%, subscriptions
	// present, and expenses above 95% of income: every rule fires.
	records := []models.FinancialRecord{
		record(models.DataIncome, "Salary", 100000),
		record(models.DataExpense, "Housing", 40000),
		record(models.DataExpense, "Transportation", 20000),
		record(models.DataExpense, "Food", 15000),
		record(models.DataExpense, "Subscriptions", 1200),
		record(models.DataExpense, "Other", 20000),
	}

	result, err := analyzer.Analyze(context.Background(), records, &Context{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	want := []string{"housing_optimization", "transportation", "subscription_audit", "food_optimization", "emergency_buffer"}
	if len(result.Recommendations) != len(want) {
		t.Fatalf("got %d recommendations, want %d", len(result.Recommendations), len(want))
	}
	for i, rec := range result.Recommendations {
		if rec.Type != want[i] {
			t.Errorf("recommendation[%d].Type = %s, want %s", i, rec.Type, want[i])
		}
	}
}

func TestBudgetAnalyzeZeroIncome(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	analyzer := NewBudgetOptimizer(gen, zap.NewNop())

	records := []models.FinancialRecord{
		record(models.DataExpense, "Food", 12000),
	}

	result, err := analyzer.Analyze(context.Background(), records, &Context{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := result.Metrics["expense_ratio"]; got != 0 {
		t.Errorf("expense_ratio = %f, want 0 without income", got)
	}
	// No income is treated as maximum budget pressure.
	if result.PriorityScore != 10 {
		t.Errorf("priority score = %d, want 10", result.PriorityScore)
	}
}
