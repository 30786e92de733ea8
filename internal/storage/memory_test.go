package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rupai/finagents/internal/models"
)

func TestMemoryStorageInsightLifecycle(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	for _, agentType := range models.AllAgentTypes {
		err := store.SaveInsight(ctx, &models.Insight{
			UserID:      "user-1",
			AgentType:   agentType,
			InsightType: models.InsightAnalysis,
			Title:       "Analysis",
		})
		if err != nil {
			t.Fatalf("SaveInsight(%s): %v", agentType, err)
		}
	}

	active, err := store.GetActiveInsights(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("GetActiveInsights: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("got %d active insights, want 3", len(active))
	}

	if err := store.DeactivateInsights(ctx, "user-1", models.AgentDebtAnalyzer); err != nil {
		t.Fatalf("DeactivateInsights: %v", err)
	}

	active, err = store.GetActiveInsights(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("GetActiveInsights: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("got %d active insights after deactivation, want 2", len(active))
	}
	for _, ins := range active {
		if ins.AgentType == models.AgentDebtAnalyzer {
			t.Errorf("deactivated agent type still listed as active")
		}
	}

	// Deactivation keeps history: nothing is deleted.
	if total := len(store.AllInsights()); total != 3 {
		t.Errorf("got %d stored insights, want 3", total)
	}

	filtered, err := store.GetActiveInsights(ctx, "user-1", models.AgentSavingsStrategy)
	if err != nil {
		t.Fatalf("GetActiveInsights filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].AgentType != models.AgentSavingsStrategy {
		t.Fatalf("agent type filter broken: %+v", filtered)
	}
}

func TestMemoryStorageSummary(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	store.AddFinancialRecord(models.FinancialRecord{
		UserID: "user-1", DataType: models.DataIncome, Amount: decimal.NewFromInt(120000),
	})
	store.AddFinancialRecord(models.FinancialRecord{
		UserID: "user-1", DataType: models.DataExpense, Amount: decimal.NewFromInt(90000),
	})
	store.AddFinancialRecord(models.FinancialRecord{
		UserID: "user-1", DataType: models.DataDebt, Amount: decimal.NewFromInt(15000),
	})

	summary, err := store.GetFinancialSummary(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetFinancialSummary: %v", err)
	}
	if !summary.TotalIncome.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("total income = %s", summary.TotalIncome)
	}
	if !summary.TotalDebt.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("total debt = %s", summary.TotalDebt)
	}
	if summary.SavingsRate != 25 {
		t.Errorf("savings rate = %f, want 25", summary.SavingsRate)
	}

	// A user with no records gets a zero summary, not an error.
	empty, err := store.GetFinancialSummary(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetFinancialSummary(empty): %v", err)
	}
	if empty.SavingsRate != 0 || !empty.TotalIncome.IsZero() {
		t.Errorf("expected a zero summary, got %+v", empty)
	}
}

func TestMemoryStorageDocuments(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	docID := store.AddDocument(models.Document{UserID: "user-1"})
	store.AddDocumentChunk(models.DocumentChunk{DocumentID: docID, UserID: "user-1", Content: "chunk"})

	owner, err := store.GetDocumentOwner(ctx, docID)
	if err != nil {
		t.Fatalf("GetDocumentOwner: %v", err)
	}
	if owner != "user-1" {
		t.Errorf("owner = %q", owner)
	}

	chunks, err := store.GetDocumentChunks(ctx, docID)
	if err != nil {
		t.Fatalf("GetDocumentChunks: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Content != "chunk" {
		t.Fatalf("chunks = %+v", chunks)
	}

	if err := store.SetDocumentStatus(ctx, docID, models.DocumentFailed, "boom"); err != nil {
		t.Fatalf("SetDocumentStatus: %v", err)
	}
	doc, _ := store.GetDocument(docID)
	if doc.Status != models.DocumentFailed || doc.StatusDetail != "boom" {
		t.Errorf("document status = %+v", doc)
	}

	if _, err := store.GetDocumentOwner(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.SetDocumentStatus(ctx, "missing", models.DocumentFailed, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
