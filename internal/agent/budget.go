package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/llm"
	"github.com/rupai/finagents/internal/models"
)

const budgetSystemPrompt = `You are a specialized Budget Optimization Agent for RupAI, an AI Financial Coach. Your expertise is in:

1. Expense Analysis & Categorization
2. Budget Creation & Optimization
3. Spending Pattern Analysis
4. Cost Reduction Strategies
5. Cash Flow Management

Your role is to:
- Analyze spending patterns and identify optimization opportunities
- Create personalized budgets using the 50/30/20 rule or custom allocations
- Identify unnecessary expenses and subscriptions
- Recommend cost-cutting strategies without sacrificing quality of life
- Optimize recurring expenses (insurance, utilities, subscriptions)
- Track spending against budget goals
- Suggest automated budgeting tools and methods
- Balance needs vs wants spending

Always provide specific, actionable recommendations with clear dollar amounts, percentages, and step-by-step implementation plans. Use actual numbers from the user's financial data to make calculations precise and personalized.`

// BudgetOptimizer examines spending by category against income and produces
// cost-reduction recommendations.
type BudgetOptimizer struct {
	base
}

func NewBudgetOptimizer(generator llm.Generator, logger *zap.Logger) *BudgetOptimizer {
	return &BudgetOptimizer{base{
		systemPrompt: budgetSystemPrompt,
		generator:    generator,
		logger:       logger,
	}}
}

func (a *BudgetOptimizer) Type() models.AgentType { return models.AgentBudgetOptimizer }

func (a *BudgetOptimizer) Analyze(ctx context.Context, records []models.FinancialRecord, actx *Context) (*models.AnalyzerResult, error) {
	expenses := filterRecords(records, models.DataExpense)
	incomes := filterRecords(records, models.DataIncome)

	totalIncome := sumAmounts(incomes)
	totalExpenses := sumAmounts(expenses)
	monthlyIncome := totalIncome.Div(twelve)
	monthlyExpenses := totalExpenses.Div(twelve)

	categories := make(map[string]decimal.Decimal)
	for _, exp := range expenses {
		category := exp.Category
		if category == "" {
			category = "Other"
		}
		categories[category] = categories[category].Add(exp.Amount)
	}

	type categoryTotal struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
		Percent  float64 `json:"percent_of_income"`
	}
	ranked := make([]categoryTotal, 0, len(categories))
	for category, amount := range categories {
		ranked = append(ranked, categoryTotal{
			Category: category,
			Amount:   amount.InexactFloat64(),
			Percent:  ratioPercent(amount, totalIncome),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return ranked[i].Category < ranked[j].Category
	})

	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}
	rankedJSON, _ := json.MarshalIndent(top, "", "  ")
	prompt := fmt.Sprintf(`Analyze this budget and spending patterns, provide optimization recommendations:

Monthly Income: $%s
Monthly Expenses: $%s
Monthly Surplus/Deficit: $%s

Top Expense Categories:
%s

Provide:
1. Budget analysis using 50/30/20 rule (needs/wants/savings)
2. Specific cost reduction opportunities in each category
3. Subscription and recurring expense audit recommendations
4. Optimization strategies for largest expense categories
5. Automated budgeting and tracking recommendations
6. Cash flow improvement strategies
7. Emergency expense planning

Format as structured analysis with specific dollar amounts and action items.`,
		monthlyIncome.StringFixed(2), monthlyExpenses.StringFixed(2),
		monthlyIncome.Sub(monthlyExpenses).StringFixed(2), rankedJSON)

	narrative, err := a.generate(ctx, actx, prompt)
	if err != nil {
		return nil, fmt.Errorf("budget analysis narrative: %w", err)
	}

	return &models.AnalyzerResult{
		AgentType:       models.AgentBudgetOptimizer,
		Narrative:       narrative,
		Recommendations: a.buildRecommendations(categories, totalIncome, monthlyIncome, monthlyExpenses),
		Metrics: map[string]float64{
			"monthly_income":   monthlyIncome.InexactFloat64(),
			"monthly_expenses": monthlyExpenses.InexactFloat64(),
			"expense_ratio":    ratioPercent(monthlyExpenses, monthlyIncome),
		},
		PriorityScore: budgetPriorityScore(monthlyIncome, monthlyExpenses),
	}, nil
}

func (a *BudgetOptimizer) Respond(ctx context.Context, message string, actx *Context) (string, error) {
	return a.generate(ctx, actx, message)
}

func (a *BudgetOptimizer) buildRecommendations(categories map[string]decimal.Decimal, totalIncome, monthlyIncome, monthlyExpenses decimal.Decimal) []models.Recommendation {
	var recommendations []models.Recommendation

	sum := func(names ...string) decimal.Decimal {
		var total decimal.Decimal
		for _, name := range names {
			total = total.Add(categories[name])
		}
		return total
	}

	housing := sum("Housing", "Rent", "Mortgage")
	housingPercent := ratioPercent(housing, totalIncome)
	if housingPercent > 30 {
		monthlySavings := housing.Sub(totalIncome.Mul(decimal.NewFromFloat(0.30))).Div(twelve)
		recommendations = append(recommendations, models.Recommendation{
			Type:        "housing_optimization",
			Title:       "Reduce Housing Costs",
			Description: fmt.Sprintf("Housing costs are %.1f%% of income (recommended: 30%%)", housingPercent),
			Action:      fmt.Sprintf("Consider refinancing, roommate, or downsizing to save $%s/month", monthlySavings.StringFixed(0)),
			Impact:      fmt.Sprintf("Could free up $%s/year for savings or debt payoff", monthlySavings.Mul(twelve).StringFixed(0)),
		})
	}

	transportation := sum("Transportation", "Car", "Gas")
	if ratioPercent(transportation, totalIncome) > 15 {
		recommendations = append(recommendations, models.Recommendation{
			Type:        "transportation",
			Title:       "Optimize Transportation Costs",
			Description: "Transportation costs are above recommended 15% of income",
			Action:      "Review car insurance, consider carpooling, public transit, or more fuel-efficient vehicle",
			Impact:      "Potential savings of $100-300/month",
		})
	}

	entertainment := sum("Entertainment", "Subscriptions")
	if entertainment.IsPositive() {
		recommendations = append(recommendations, models.Recommendation{
			Type:        "subscription_audit",
			Title:       "Audit Subscriptions and Entertainment",
			Description: fmt.Sprintf("Currently spending $%s/month on entertainment/subscriptions", entertainment.Div(twelve).StringFixed(0)),
			Action:      "Cancel unused subscriptions, negotiate better rates, bundle services",
			Impact:      "Typical savings of $50-150/month from subscription optimization",
		})
	}

	food := sum("Food", "Dining", "Groceries")
	if ratioPercent(food, totalIncome) > 12 {
		monthlySavings := food.Sub(totalIncome.Mul(decimal.NewFromFloat(0.10))).Div(twelve)
		recommendations = append(recommendations, models.Recommendation{
			Type:        "food_optimization",
			Title:       "Optimize Food and Dining Expenses",
			Description: "Food expenses are above recommended 10-12% of income",
			Action:      "Meal planning, cooking at home, bulk buying, reduce dining out frequency",
			Impact:      fmt.Sprintf("Potential savings of $%s/month", monthlySavings.StringFixed(0)),
		})
	}

	if monthlyExpenses.GreaterThanOrEqual(monthlyIncome.Mul(decimal.NewFromFloat(0.95))) {
		recommendations = append(recommendations, models.Recommendation{
			Type:        "emergency_buffer",
			Title:       "Create Budget Buffer",
			Description: "Very tight budget with little room for unexpected expenses",
			Action:      "Identify $200-500/month in expense reductions for emergency buffer",
			Impact:      "Prevent debt accumulation from unexpected expenses",
		})
	}

	return recommendations
}

// budgetPriorityScore rates urgency from the expense ratio. A user with no
// recorded income is treated as spending everything they earn.
func budgetPriorityScore(monthlyIncome, monthlyExpenses decimal.Decimal) int {
	ratio := 1.0
	if monthlyIncome.IsPositive() {
		ratio = monthlyExpenses.Div(monthlyIncome).InexactFloat64()
	}

	switch {
	case ratio >= 1.0:
		return 10
	case ratio >= 0.95:
		return 8
	case ratio >= 0.85:
		return 6
	case ratio >= 0.70:
		return 4
	default:
		return 2
	}
}
