package agent

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/models"
)

func TestSavingsPriorityScore(t *testing.T) {
	cases := []struct {
		name        string
		savingsRate float64
		gap         float64
		want        int
	}{
		{"large emergency fund gap", 25, 22000, 9},
		{"low savings rate", 5, 7000, 7},
		{"below recommended rate", 15, 6000, 5},
		{"healthy savings", 25, 5000, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := savingsPriorityScore(tc.savingsRate, decimal.NewFromFloat(tc.gap))
			if got != tc.want {
				t.Fatalf("savingsPriorityScore(%v, %v) = %d, want %d", tc.savingsRate, tc.gap, got, tc.want)
			}
		})
	}
}

func TestSavingsAnalyze(t *testing.T) {
	gen := &stubGenerator{reply: "savings narrative"}
	analyzer := NewSavingsStrategy(gen, 6, zap.NewNop())

	records := []models.FinancialRecord{
		record(models.DataIncome, "Salary", 120000),
		record(models.DataExpense, "Housing", 48000),
		record(models.DataExpense, "Food", 24000),
		record(models.DataSavings, "Savings Account", 2000),
	}

	result, err := analyzer.Analyze(context.Background(), records, &Context{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// monthly income 10000, expenses 6000, surplus 4000 => 40% rate
	if got := result.Metrics["savings_rate"]; got != 40 {
		t.Errorf("savings_rate = %f, want 40", got)
	}
	if got := result.Metrics["total_savings"]; got != 2000 {
		t.Errorf("total_savings = %f, want 2000", got)
	}
	if got := result.Metrics["monthly_surplus"]; got != 4000 {
		t.Errorf("monthly_surplus = %f, want 4000", got)
	}

	// Emergency fund target 36000, gap 34000 > 10000.
	if result.PriorityScore != 9 {
		t.Errorf("priority score = %d, want 9", result.PriorityScore)
	}

	// Gap rule, plus the always-on account optimization. Rate is healthy and
	// the balance is below the investment floor.
	if len(result.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(result.Recommendations))
	}
	if result.Recommendations[0].Type != "emergency_fund" {
		t.Errorf("first recommendation type = %s", result.Recommendations[0].Type)
	}
	if result.Recommendations[1].Type != "account_optimization" {
		t.Errorf("second recommendation type = %s", result.Recommendations[1].Type)
	}
}

func TestSavingsAnalyzeInvestmentRule(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	analyzer := NewSavingsStrategy(gen, 6, zap.NewNop())

	// Savings above the investment floor and above the emergency target.
	records := []models.FinancialRecord{
		record(models.DataIncome, "Salary", 120000),
		record(models.DataExpense, "Living", 24000),
		record(models.DataSavings, "Brokerage", 50000),
	}

	result, err := analyzer.Analyze(context.Background(), records, &Context{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var types []string
	for _, rec := range result.Recommendations {
		types = append(types, rec.Type)
	}
	want := []string{"investment", "account_optimization"}
	if len(types) != len(want) {
		t.Fatalf("recommendation types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("recommendation types = %v, want %v", types, want)
		}
	}
}

func TestSavingsAnalyzeZeroInput(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	analyzer := NewSavingsStrategy(gen, 6, zap.NewNop())

	result, err := analyzer.Analyze(context.Background(), nil, &Context{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	for name, value := range result.Metrics {
		if value != 0 {
			t.Errorf("metric %s = %f, want 0 on empty input", name, value)
		}
	}

	// No gap (target is zero) but a 0% savings rate.
	if result.PriorityScore != 7 {
		t.Errorf("priority score = %d, want 7", result.PriorityScore)
	}
}
