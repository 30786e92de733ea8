package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/llm"
	"github.com/rupai/finagents/internal/models"
)

const savingsSystemPrompt = `You are a specialized Savings Strategy Agent for RupAI, an AI Financial Coach. Your expertise is in:

1. Savings Goal Planning & Optimization
2. Investment Strategy Development
3. Emergency Fund Planning
4. Retirement Planning
5. Tax-Advantaged Account Optimization

Your role is to:
- Analyze current savings patterns and rates
- Create personalized savings goals and timelines
- Recommend optimal savings vehicles (high-yield savings, CDs, investments)
- Develop emergency fund strategies
- Plan retirement contributions and asset allocation
- Optimize tax-advantaged accounts (401k, IRA, HSA)
- Balance savings vs debt payoff priorities
- Create automated savings plans

Always provide specific, actionable recommendations with clear timelines, expected returns, and step-by-step implementation plans. Use actual numbers from the user's financial data to make calculations precise and personalized.`

// SavingsStrategy examines savings balances against income and expenses and
// produces emergency-fund and savings-rate recommendations.
type SavingsStrategy struct {
	base
	// emergencyFundMonths is the expense coverage the emergency fund should
	// reach before it counts as complete.
	emergencyFundMonths int
}

func NewSavingsStrategy(generator llm.Generator, emergencyFundMonths int, logger *zap.Logger) *SavingsStrategy {
	return &SavingsStrategy{
		base: base{
			systemPrompt: savingsSystemPrompt,
			generator:    generator,
			logger:       logger,
		},
		emergencyFundMonths: emergencyFundMonths,
	}
}

func (a *SavingsStrategy) Type() models.AgentType { return models.AgentSavingsStrategy }

func (a *SavingsStrategy) Analyze(ctx context.Context, records []models.FinancialRecord, actx *Context) (*models.AnalyzerResult, error) {
	savings := filterRecords(records, models.DataSavings)
	incomes := filterRecords(records, models.DataIncome)
	expenses := filterRecords(records, models.DataExpense)

	totalSavings := sumAmounts(savings)
	monthlyIncome := sumAmounts(incomes).Div(twelve)
	monthlyExpenses := sumAmounts(expenses).Div(twelve)
	monthlySurplus := monthlyIncome.Sub(monthlyExpenses)
	savingsRate := ratioPercent(monthlySurplus, monthlyIncome)

	target := monthlyExpenses.Mul(decimal.NewFromInt(int64(a.emergencyFundMonths)))
	gap := target.Sub(totalSavings)
	if gap.IsNegative() {
		gap = decimal.Zero
	}

	savingsJSON, _ := json.MarshalIndent(savings, "", "  ")
	prompt := fmt.Sprintf(`Analyze this savings situation and provide comprehensive recommendations:

Current Savings: $%s
Monthly Income: $%s
Monthly Expenses: $%s
Monthly Surplus: $%s
Current Savings Rate: %.1f%%

Emergency Fund Target: $%s
Emergency Fund Gap: $%s

Savings Breakdown:
%s

Provide:
1. Emergency fund completion strategy
2. Optimal savings rate recommendations (target 20%%)
3. High-yield savings account recommendations
4. Investment allocation strategy based on age/goals
5. Retirement savings optimization (401k, IRA)
6. Automated savings plan setup
7. Tax-advantaged account prioritization

Format as structured analysis with specific action items and timelines.`,
		totalSavings.StringFixed(2), monthlyIncome.StringFixed(2), monthlyExpenses.StringFixed(2),
		monthlySurplus.StringFixed(2), savingsRate, target.StringFixed(2), gap.StringFixed(2), savingsJSON)

	narrative, err := a.generate(ctx, actx, prompt)
	if err != nil {
		return nil, fmt.Errorf("savings analysis narrative: %w", err)
	}

	return &models.AnalyzerResult{
		AgentType:       models.AgentSavingsStrategy,
		Narrative:       narrative,
		Recommendations: a.buildRecommendations(totalSavings, monthlySurplus, gap, savingsRate),
		Metrics: map[string]float64{
			"total_savings":           totalSavings.InexactFloat64(),
			"savings_rate":            savingsRate,
			"emergency_fund_progress": ratioPercent(totalSavings, target),
			"monthly_surplus":         monthlySurplus.InexactFloat64(),
		},
		PriorityScore: savingsPriorityScore(savingsRate, gap),
	}, nil
}

func (a *SavingsStrategy) Respond(ctx context.Context, message string, actx *Context) (string, error) {
	return a.generate(ctx, actx, message)
}

func (a *SavingsStrategy) buildRecommendations(totalSavings, monthlySurplus, gap decimal.Decimal, savingsRate float64) []models.Recommendation {
	var recommendations []models.Recommendation

	if gap.IsPositive() {
		surplus := monthlySurplus.InexactFloat64()
		monthlyTarget := math.Min(surplus*0.5, gap.InexactFloat64()/6)
		monthsToComplete := gap.InexactFloat64() / math.Max(surplus*0.5, 100)
		recommendations = append(recommendations, models.Recommendation{
			Type:        "emergency_fund",
			Title:       "Complete Emergency Fund",
			Description: fmt.Sprintf("Build emergency fund to $%s", gap.Add(totalSavings).StringFixed(0)),
			Action:      fmt.Sprintf("Save $%.0f/month in high-yield savings", monthlyTarget),
			Impact:      fmt.Sprintf("Complete in %.0f months, providing %d months expense coverage", monthsToComplete, a.emergencyFundMonths),
		})
	}

	if savingsRate < 20 {
		targetIncrease := math.Max(100, monthlySurplus.InexactFloat64()*0.2)
		recommendations = append(recommendations, models.Recommendation{
			Type:        "savings_rate",
			Title:       "Increase Savings Rate",
			Description: fmt.Sprintf("Current rate %.1f%% is below recommended 20%%", savingsRate),
			Action:      fmt.Sprintf("Increase monthly savings by $%.0f through automated transfers", targetIncrease),
			Impact:      "Reach recommended 20% savings rate for financial security",
		})
	}

	if totalSavings.GreaterThan(decimal.NewFromInt(10000)) {
		recommendations = append(recommendations, models.Recommendation{
			Type:        "investment",
			Title:       "Start Investment Portfolio",
			Description: "Begin investing surplus savings for long-term growth",
			Action:      "Open investment account and start with 60/40 stock/bond allocation",
			Impact:      "Potential 7-10% annual returns vs 2-3% in savings",
		})
	}

	recommendations = append(recommendations, models.Recommendation{
		Type:        "account_optimization",
		Title:       "Optimize Savings Accounts",
		Description: "Move savings to high-yield accounts",
		Action:      "Research accounts offering 4-5% APY vs traditional 0.1%",
		Impact:      fmt.Sprintf("Earn additional $%.0f/year in interest", totalSavings.InexactFloat64()*0.04),
	})

	return recommendations
}

// savingsPriorityScore rates urgency: a missing emergency fund outranks a
// merely low savings rate.
func savingsPriorityScore(savingsRate float64, gap decimal.Decimal) int {
	switch {
	case gap.GreaterThan(decimal.NewFromInt(10000)):
		return 9
	case savingsRate < 10:
		return 7
	case savingsRate < 20:
		return 5
	default:
		return 3
	}
}
