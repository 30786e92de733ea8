package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/models"
)

// stubGenerator is a canned text-generation collaborator.
type stubGenerator struct {
	reply       string
	err         error
	lastSystem  string
	lastContext string
	lastMessage string
}

func (g *stubGenerator) Generate(_ context.Context, systemPrompt, contextBlock, userMessage string) (string, error) {
	g.lastSystem = systemPrompt
	g.lastContext = contextBlock
	g.lastMessage = userMessage
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func record(dataType models.DataType, category string, amount float64) models.FinancialRecord {
	return models.FinancialRecord{
		UserID:   "user-1",
		DataType: dataType,
		Category: category,
		Amount:   decimal.NewFromFloat(amount),
	}
}

func recordWithRate(dataType models.DataType, category string, amount, rate float64) models.FinancialRecord {
	rec := record(dataType, category, amount)
	rec.InterestRate = &rate
	return rec
}

func TestFormatContext(t *testing.T) {
	actx := &Context{
		UserID: "user-1",
		Summary: &models.FinancialSummary{
			UserID:      "user-1",
			TotalIncome: decimal.NewFromInt(120000),
		},
		RecentInsights: []models.Insight{
			{AgentType: models.AgentDebtAnalyzer, Title: "Debt Analyzer Analysis"},
		},
		DocumentChunks: []models.DocumentChunk{
			{Content: "Statement for March"},
		},
	}

	formatted := formatContext(actx)
	for _, want := range []string{"Financial Summary:", "Recent Insights:", "Relevant Document Content:", "Statement for March"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("formatted context missing %q:\n%s", want, formatted)
		}
	}

	if got := formatContext(nil); got != "" {
		t.Errorf("expected empty context for nil, got %q", got)
	}
}

func TestRatioPercentZeroDenominator(t *testing.T) {
	if got := ratioPercent(decimal.NewFromInt(500), decimal.Zero); got != 0 {
		t.Fatalf("expected 0 for zero denominator, got %f", got)
	}
	if got := ratioPercent(decimal.NewFromInt(30), decimal.NewFromInt(120)); got != 25 {
		t.Fatalf("expected 25, got %f", got)
	}
}

func TestNarrativeFailurePropagates(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider timeout")}
	analyzers := []Analyzer{
		NewDebtAnalyzer(gen, zap.NewNop()),
		NewSavingsStrategy(gen, 6, zap.NewNop()),
		NewBudgetOptimizer(gen, zap.NewNop()),
	}

	records := []models.FinancialRecord{record(models.DataIncome, "Salary", 100000)}
	for _, a := range analyzers {
		if _, err := a.Analyze(context.Background(), records, &Context{UserID: "user-1"}); err == nil {
			t.Errorf("%s: expected error when the generator fails", a.Type())
		}
	}
}
