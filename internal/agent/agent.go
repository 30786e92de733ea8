package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/llm"
	"github.com/rupai/finagents/internal/models"
)

// Context is the per-invocation analysis context assembled by the
// orchestrator. It is shared read-only across the analyzers of one run and
// never persisted.
type Context struct {
	UserID         string
	Summary        *models.FinancialSummary
	RecentInsights []models.Insight
	DocumentChunks []models.DocumentChunk
}

// Analyzer computes domain-specific metrics, recommendations and a priority
// score from a user's financial records, and answers free-text questions in
// its domain.
type Analyzer interface {
	Type() models.AgentType
	Analyze(ctx context.Context, records []models.FinancialRecord, actx *Context) (*models.AnalyzerResult, error)
	Respond(ctx context.Context, message string, actx *Context) (string, error)
}

// base carries the collaborators and prompt plumbing shared by the three
// analyzers.
type base struct {
	systemPrompt string
	generator    llm.Generator
	logger       *zap.Logger
}

// generate delegates narrative generation to the text-generation
// collaborator. Failures propagate: metrics must never be padded with
// fallback prose.
func (b *base) generate(ctx context.Context, actx *Context, userMessage string) (string, error) {
	reply, err := b.generator.Generate(ctx, b.systemPrompt, formatContext(actx), userMessage)
	if err != nil {
		b.logger.Error("Failed to generate narrative", zap.Error(err))
		return "", err
	}
	return reply, nil
}

// formatContext renders the analysis context as a plain-text block for the
// language model.
func formatContext(actx *Context) string {
	if actx == nil {
		return ""
	}

	var parts []string

	if actx.Summary != nil {
		summary, _ := json.Marshal(actx.Summary)
		parts = append(parts, fmt.Sprintf("Financial Summary: %s", summary))
	}

	if len(actx.RecentInsights) > 0 {
		titles := make([]string, len(actx.RecentInsights))
		for i, ins := range actx.RecentInsights {
			titles[i] = fmt.Sprintf("[%s] %s", ins.AgentType, ins.Title)
		}
		parts = append(parts, fmt.Sprintf("Recent Insights: %s", strings.Join(titles, "; ")))
	}

	if len(actx.DocumentChunks) > 0 {
		contents := make([]string, len(actx.DocumentChunks))
		for i, chunk := range actx.DocumentChunks {
			contents[i] = chunk.Content
		}
		parts = append(parts, fmt.Sprintf("Relevant Document Content: %s", strings.Join(contents, "\n")))
	}

	return strings.Join(parts, "\n\n")
}

func filterRecords(records []models.FinancialRecord, dataType models.DataType) []models.FinancialRecord {
	var filtered []models.FinancialRecord
	for _, rec := range records {
		if rec.DataType == dataType {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func sumAmounts(records []models.FinancialRecord) decimal.Decimal {
	var total decimal.Decimal
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total
}

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// ratioPercent returns part/whole as a percentage, zero when the
// denominator is not positive.
func ratioPercent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}
