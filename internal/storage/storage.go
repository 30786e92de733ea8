package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rupai/finagents/internal/models"
)

// ErrNotFound is returned when a requested document, user or insight does
// not exist. It is not retry-worthy, unlike transient connection errors.
var ErrNotFound = errors.New("not found")

// Storage is the repository adapter over the hosted data store. It carries
// no business logic.
type Storage interface {
	GetFinancialRecords(ctx context.Context, userID string) ([]models.FinancialRecord, error)
	GetFinancialSummary(ctx context.Context, userID string) (*models.FinancialSummary, error)

	GetDocumentOwner(ctx context.Context, documentID string) (string, error)
	GetDocumentChunks(ctx context.Context, documentID string) ([]models.DocumentChunk, error)
	SetDocumentStatus(ctx context.Context, documentID string, status models.DocumentStatus, detail string) error

	// GetActiveInsights returns active insights for a user, newest first.
	// An empty agentType returns insights for all agents.
	GetActiveInsights(ctx context.Context, userID string, agentType models.AgentType) ([]models.Insight, error)
	DeactivateInsights(ctx context.Context, userID string, agentType models.AgentType) error
	SaveInsight(ctx context.Context, insight *models.Insight) error

	Close() error
}

// buildSummary assembles the aggregate view shared by both implementations.
// The savings rate is the income surplus as a percentage of income, zero
// when there is no income.
func buildSummary(userID string, income, expenses, debt, savings decimal.Decimal) *models.FinancialSummary {
	summary := &models.FinancialSummary{
		UserID:        userID,
		TotalIncome:   income,
		TotalExpenses: expenses,
		TotalDebt:     debt,
		TotalSavings:  savings,
	}
	if income.IsPositive() {
		summary.SavingsRate = income.Sub(expenses).Div(income).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return summary
}
