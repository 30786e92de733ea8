package orchestrator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rupai/finagents/internal/models"
)

// routingRule binds one keyword set to one analyzer. Rules are checked in
// slice order and the first match wins, so a message touching several
// domains resolves to the earliest rule.
type routingRule struct {
	agentType models.AgentType
	keywords  []string
}

var routingRules = []routingRule{
	{models.AgentDebtAnalyzer, []string{"debt", "loan", "credit", "payoff", "interest"}},
	{models.AgentSavingsStrategy, []string{"save", "saving", "investment", "retire", "emergency fund"}},
	{models.AgentBudgetOptimizer, []string{"budget", "expense", "spending", "cost", "subscription"}},
}

// Router maps a free-text message to the analyzer that should answer it.
type Router struct {
	debtThreshold        decimal.Decimal
	savingsRateThreshold float64
}

func NewRouter(debtThreshold float64, savingsRateThreshold float64) *Router {
	return &Router{
		debtThreshold:        decimal.NewFromFloat(debtThreshold),
		savingsRateThreshold: savingsRateThreshold,
	}
}

// Route picks an analyzer by keyword match, falling back to the user's
// financial posture when no keyword hits. The fallback checks debt before
// savings: high debt is the more urgent signal.
func (r *Router) Route(message string, summary *models.FinancialSummary) models.AgentType {
	lowered := strings.ToLower(message)

	for _, rule := range routingRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.agentType
			}
		}
	}

	if summary != nil && summary.TotalDebt.GreaterThan(r.debtThreshold) {
		return models.AgentDebtAnalyzer
	}
	if summary == nil || summary.SavingsRate < r.savingsRateThreshold {
		return models.AgentSavingsStrategy
	}
	return models.AgentBudgetOptimizer
}
