package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/llm"
	"github.com/rupai/finagents/internal/models"
)

const debtSystemPrompt = `You are a specialized Debt Analysis Agent for RupAI, an AI Financial Coach. Your expertise is in:

1. Debt Analysis & Optimization
2. Interest Rate Calculations
3. Payoff Strategy Development
4. Debt Consolidation Assessment
5. Credit Score Impact Analysis

Your role is to:
- Analyze all forms of debt (credit cards, loans, mortgages, etc.)
- Calculate optimal payoff strategies (avalanche vs snowball methods)
- Identify consolidation opportunities
- Assess refinancing options
- Provide actionable debt reduction plans
- Monitor debt-to-income ratios
- Suggest credit score improvement strategies

Always provide specific, actionable recommendations with clear timelines and expected outcomes. Use actual numbers from the user's financial data to make calculations precise and personalized.`

// DebtAnalyzer examines a user's debt load against income and produces
// payoff-oriented recommendations.
type DebtAnalyzer struct {
	base
}

func NewDebtAnalyzer(generator llm.Generator, logger *zap.Logger) *DebtAnalyzer {
	return &DebtAnalyzer{base{
		systemPrompt: debtSystemPrompt,
		generator:    generator,
		logger:       logger,
	}}
}

func (a *DebtAnalyzer) Type() models.AgentType { return models.AgentDebtAnalyzer }

func (a *DebtAnalyzer) Analyze(ctx context.Context, records []models.FinancialRecord, actx *Context) (*models.AnalyzerResult, error) {
	debts := filterRecords(records, models.DataDebt)
	incomes := filterRecords(records, models.DataIncome)

	totalDebt := sumAmounts(debts)
	totalIncome := sumAmounts(incomes)
	debtToIncome := ratioPercent(totalDebt, totalIncome)

	debtsJSON, _ := json.MarshalIndent(debts, "", "  ")
	prompt := fmt.Sprintf(`Analyze this debt situation and provide comprehensive recommendations:

Total Debt: $%s
Total Annual Income: $%s
Debt-to-Income Ratio: %.1f%%

Individual Debts:
%s

Provide:
1. Debt prioritization strategy (avalanche vs snowball)
2. Optimal payoff timeline with specific monthly payments
3. Potential interest savings with optimization
4. Consolidation opportunities
5. Credit score improvement strategies
6. Emergency fund considerations while paying debt

Format as structured analysis with specific action items.`,
		totalDebt.StringFixed(2), totalIncome.StringFixed(2), debtToIncome, debtsJSON)

	narrative, err := a.generate(ctx, actx, prompt)
	if err != nil {
		return nil, fmt.Errorf("debt analysis narrative: %w", err)
	}

	return &models.AnalyzerResult{
		AgentType:       models.AgentDebtAnalyzer,
		Narrative:       narrative,
		Recommendations: a.buildRecommendations(debts, totalIncome),
		Metrics: map[string]float64{
			"total_debt":           totalDebt.InexactFloat64(),
			"debt_to_income_ratio": debtToIncome,
			"debt_count":           float64(len(debts)),
		},
		PriorityScore: debtPriorityScore(debtToIncome, totalDebt),
	}, nil
}

func (a *DebtAnalyzer) Respond(ctx context.Context, message string, actx *Context) (string, error) {
	return a.generate(ctx, actx, message)
}

// buildRecommendations applies the fixed, order-stable rule list. Each rule
// emits at most one recommendation.
func (a *DebtAnalyzer) buildRecommendations(debts []models.FinancialRecord, totalIncome decimal.Decimal) []models.Recommendation {
	var recommendations []models.Recommendation

	if len(debts) == 0 {
		return recommendations
	}

	// Avalanche method: highest interest rate first. Unknown rates sort last.
	sorted := make([]models.FinancialRecord, len(debts))
	copy(sorted, debts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return interestRate(sorted[i]) > interestRate(sorted[j])
	})

	highest := sorted[0]
	rate := "unknown"
	if highest.InterestRate != nil {
		rate = fmt.Sprintf("%.1f", *highest.InterestRate)
	}
	extra := math.Min(500, totalIncome.InexactFloat64()*0.1/12)
	recommendations = append(recommendations, models.Recommendation{
		Type:        "debt_prioritization",
		Title:       "Focus on Highest Interest Debt First",
		Description: fmt.Sprintf("Prioritize paying off %s with %s%% interest rate", highest.Category, rate),
		Action:      fmt.Sprintf("Pay minimum on all debts, then put extra $%.0f/month toward this debt", extra),
		Impact:      "Could save thousands in interest payments",
	})

	if len(debts) > 2 {
		recommendations = append(recommendations, models.Recommendation{
			Type:        "consolidation",
			Title:       "Consider Debt Consolidation",
			Description: "Multiple debts could benefit from consolidation",
			Action:      "Research personal loans or balance transfer cards with lower rates",
			Impact:      "Simplify payments and potentially reduce interest rates",
		})
	}

	return recommendations
}

func interestRate(rec models.FinancialRecord) float64 {
	if rec.InterestRate == nil {
		return 0
	}
	return *rec.InterestRate
}

// debtPriorityScore maps the debt-to-income ratio to an urgency score of
// 1-10, higher meaning more urgent.
func debtPriorityScore(debtToIncome float64, totalDebt decimal.Decimal) int {
	switch {
	case debtToIncome > 40:
		return 10
	case debtToIncome > 30:
		return 8
	case debtToIncome > 20:
		return 6
	case totalDebt.IsPositive():
		return 4
	default:
		return 1
	}
}
