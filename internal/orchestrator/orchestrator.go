package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/agent"
	"github.com/rupai/finagents/internal/models"
	"github.com/rupai/finagents/internal/storage"
)

const summarySeparator = " | "

// Orchestrator coordinates the three analyzers: it decides what runs, fans
// out and joins their work, merges the numeric output into persisted
// insights and routes free-text queries to the right analyzer.
type Orchestrator struct {
	store     storage.Storage
	router    *Router
	analyzers map[models.AgentType]agent.Analyzer
	logger    *zap.Logger
}

func New(store storage.Storage, router *Router, analyzers []agent.Analyzer, logger *zap.Logger) *Orchestrator {
	byType := make(map[models.AgentType]agent.Analyzer, len(analyzers))
	for _, a := range analyzers {
		byType[a.Type()] = a
	}
	return &Orchestrator{
		store:     store,
		router:    router,
		analyzers: byType,
		logger:    logger,
	}
}

// RunFullAnalysis resolves the document's owner, runs every analyzer over
// the owner's records and persists the merged result. Any failure marks the
// document failed and propagates: a report missing one analyzer is never
// committed as success.
func (o *Orchestrator) RunFullAnalysis(ctx context.Context, documentID string) (*models.AnalysisReport, error) {
	userID, err := o.store.GetDocumentOwner(ctx, documentID)
	if err != nil {
		return nil, o.failDocument(ctx, documentID, fmt.Errorf("resolving document owner: %w", err))
	}

	chunks, err := o.store.GetDocumentChunks(ctx, documentID)
	if err != nil {
		return nil, o.failDocument(ctx, documentID, fmt.Errorf("loading document chunks: %w", err))
	}

	records, actx, err := o.loadContext(ctx, userID)
	if err != nil {
		return nil, o.failDocument(ctx, documentID, err)
	}
	actx.DocumentChunks = chunks

	results, err := o.runAnalyzers(ctx, records, actx)
	if err != nil {
		return nil, o.failDocument(ctx, documentID, err)
	}

	if err := o.persistResults(ctx, userID, results); err != nil {
		return nil, o.failDocument(ctx, documentID, err)
	}

	o.logger.Info("Document analysis completed",
		zap.String("document_id", documentID),
		zap.String("user_id", userID))

	return &models.AnalysisReport{
		DocumentID: documentID,
		UserID:     userID,
		Analyses:   results,
		Summary:    buildSummaryLine(results),
	}, nil
}

// RefreshUserAnalysis deactivates the current generation of insights for
// every agent type, re-runs the analyzers and persists a fresh generation.
// The deactivate and analyze steps are not one atomic transaction; a crash
// between them leaves the user without active insights until the next
// refresh. Concurrent refreshes for the same user may interleave; the store
// converges on the most recent generation.
func (o *Orchestrator) RefreshUserAnalysis(ctx context.Context, userID string) (map[string]int, error) {
	records, actx, err := o.loadContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(models.AllAgentTypes))
	for _, agentType := range models.AllAgentTypes {
		wg.Add(1)
		go func(t models.AgentType) {
			defer wg.Done()
			if err := o.store.DeactivateInsights(ctx, userID, t); err != nil {
				errCh <- fmt.Errorf("deactivating %s insights: %w", t, err)
			}
		}(agentType)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}

	results, err := o.runAnalyzers(ctx, records, actx)
	if err != nil {
		return nil, err
	}

	if err := o.persistResults(ctx, userID, results); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(results))
	for agentType, result := range results {
		key := strings.SplitN(string(agentType), "_", 2)[0] + "_insights"
		counts[key] = len(result.Recommendations)
	}

	o.logger.Info("User analysis refreshed", zap.String("user_id", userID))
	return counts, nil
}

// RouteQuery forwards a free-text message to the analyzer the router picks
// and returns its answer verbatim.
func (o *Orchestrator) RouteQuery(ctx context.Context, userID, message string) (string, error) {
	_, actx, err := o.loadContext(ctx, userID)
	if err != nil {
		return "", err
	}

	insights, err := o.store.GetActiveInsights(ctx, userID, "")
	if err != nil {
		return "", fmt.Errorf("loading recent insights: %w", err)
	}
	actx.RecentInsights = insights

	agentType := o.router.Route(message, actx.Summary)
	analyzer, exists := o.analyzers[agentType]
	if !exists {
		return "", fmt.Errorf("no analyzer registered for %s", agentType)
	}

	o.logger.Debug("Routed query",
		zap.String("user_id", userID),
		zap.String("agent_type", string(agentType)))

	return analyzer.Respond(ctx, message, actx)
}

func (o *Orchestrator) loadContext(ctx context.Context, userID string) ([]models.FinancialRecord, *agent.Context, error) {
	records, err := o.store.GetFinancialRecords(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading financial records: %w", err)
	}

	summary, err := o.store.GetFinancialSummary(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading financial summary: %w", err)
	}

	return records, &agent.Context{UserID: userID, Summary: summary}, nil
}

// runAnalyzers fans out to every analyzer concurrently and joins all
// results before returning. One failure aborts the whole merge: downstream
// consumers never see a report missing a third of its analyzers.
func (o *Orchestrator) runAnalyzers(ctx context.Context, records []models.FinancialRecord, actx *agent.Context) (map[models.AgentType]*models.AnalyzerResult, error) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	results := make(map[models.AgentType]*models.AnalyzerResult, len(o.analyzers))
	errCh := make(chan error, len(o.analyzers))

	for _, analyzer := range o.analyzers {
		wg.Add(1)
		go func(a agent.Analyzer) {
			defer wg.Done()

			result, err := a.Analyze(ctx, records, actx)
			if err != nil {
				errCh <- fmt.Errorf("%s failed: %w", a.Type(), err)
				return
			}

			mu.Lock()
			results[a.Type()] = result
			mu.Unlock()
		}(analyzer)
	}

	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}

	return results, nil
}

// persistResults writes one analysis insight plus one recommendation
// insight per recommendation, per analyzer, in the fixed agent order.
// Within one result the analysis insight always lands first.
func (o *Orchestrator) persistResults(ctx context.Context, userID string, results map[models.AgentType]*models.AnalyzerResult) error {
	for _, agentType := range models.AllAgentTypes {
		result, exists := results[agentType]
		if !exists {
			continue
		}

		analysis := &models.Insight{
			UserID:          userID,
			AgentType:       agentType,
			InsightType:     models.InsightAnalysis,
			Title:           fmt.Sprintf("%s Analysis", agentTitle(agentType)),
			Content:         result.Narrative,
			Recommendations: result.Recommendations,
			PriorityScore:   result.PriorityScore,
		}
		if err := o.store.SaveInsight(ctx, analysis); err != nil {
			return fmt.Errorf("saving %s analysis insight: %w", agentType, err)
		}

		for _, rec := range result.Recommendations {
			insight := &models.Insight{
				UserID:          userID,
				AgentType:       agentType,
				InsightType:     models.InsightRecommendation,
				Title:           rec.Title,
				Content:         rec.Description,
				Recommendations: []models.Recommendation{rec},
				PriorityScore:   recommendationScore(rec),
			}
			if err := o.store.SaveInsight(ctx, insight); err != nil {
				return fmt.Errorf("saving %s recommendation insight: %w", agentType, err)
			}
		}
	}

	return nil
}

// recommendationScore boosts the two recommendation types that guard
// against financial emergencies; the analyzer's own score does not apply to
// sub-items.
func recommendationScore(rec models.Recommendation) int {
	if rec.Type == "emergency_fund" || rec.Type == "debt_prioritization" {
		return 8
	}
	return 5
}

// failDocument records the failure on the source document before
// propagating it. The status write is best-effort: the original error is
// what the caller needs to see.
func (o *Orchestrator) failDocument(ctx context.Context, documentID string, err error) error {
	if statusErr := o.store.SetDocumentStatus(ctx, documentID, models.DocumentFailed, err.Error()); statusErr != nil {
		o.logger.Warn("Failed to mark document as failed",
			zap.String("document_id", documentID),
			zap.Error(statusErr))
	}
	return err
}

// buildSummaryLine concatenates each analyzer's key metrics into the
// one-line cross-analyzer report summary.
func buildSummaryLine(results map[models.AgentType]*models.AnalyzerResult) string {
	var parts []string

	if debt, exists := results[models.AgentDebtAnalyzer]; exists && debt.Metrics["total_debt"] > 0 {
		parts = append(parts, fmt.Sprintf("Debt Analysis: $%.0f total debt with %.1f%% debt-to-income ratio",
			debt.Metrics["total_debt"], debt.Metrics["debt_to_income_ratio"]))
	}

	if savings, exists := results[models.AgentSavingsStrategy]; exists {
		parts = append(parts, fmt.Sprintf("Savings Analysis: %.1f%% savings rate, $%.0f current savings",
			savings.Metrics["savings_rate"], savings.Metrics["total_savings"]))
	}

	if budget, exists := results[models.AgentBudgetOptimizer]; exists {
		parts = append(parts, fmt.Sprintf("Budget Analysis: %.1f%% expense ratio, $%.0f monthly expenses",
			budget.Metrics["expense_ratio"], budget.Metrics["monthly_expenses"]))
	}

	return strings.Join(parts, summarySeparator)
}

func agentTitle(agentType models.AgentType) string {
	words := strings.Split(string(agentType), "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
