package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rupai/finagents/internal/models"
)

// MemoryStorage is an in-process Storage used for development and tests.
// The ingestion pipeline is external to this service, so data enters a
// MemoryStorage through the Add* seed helpers.
type MemoryStorage struct {
	mu        sync.RWMutex
	records   map[string][]models.FinancialRecord // keyed by user ID
	documents map[string]*models.Document
	chunks    map[string][]models.DocumentChunk // keyed by document ID
	insights  []*models.Insight
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records:   make(map[string][]models.FinancialRecord),
		documents: make(map[string]*models.Document),
		chunks:    make(map[string][]models.DocumentChunk),
	}
}

func (s *MemoryStorage) AddFinancialRecord(rec models.FinancialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	s.records[rec.UserID] = append(s.records[rec.UserID], rec)
}

func (s *MemoryStorage) AddDocument(doc models.Document) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentUploaded
	}
	doc.CreatedAt = time.Now()
	s.documents[doc.ID] = &doc
	return doc.ID
}

func (s *MemoryStorage) AddDocumentChunk(chunk models.DocumentChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chunk.ID == "" {
		chunk.ID = uuid.New().String()
	}
	s.chunks[chunk.DocumentID] = append(s.chunks[chunk.DocumentID], chunk)
}

func (s *MemoryStorage) GetFinancialRecords(ctx context.Context, userID string) ([]models.FinancialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.FinancialRecord, len(s.records[userID]))
	copy(records, s.records[userID])
	return records, nil
}

func (s *MemoryStorage) GetFinancialSummary(ctx context.Context, userID string) (*models.FinancialSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var income, expenses, debt, savings decimal.Decimal
	for _, rec := range s.records[userID] {
		switch rec.DataType {
		case models.DataIncome:
			income = income.Add(rec.Amount)
		case models.DataExpense:
			expenses = expenses.Add(rec.Amount)
		case models.DataDebt:
			debt = debt.Add(rec.Amount)
		case models.DataSavings:
			savings = savings.Add(rec.Amount)
		}
	}

	return buildSummary(userID, income, expenses, debt, savings), nil
}

func (s *MemoryStorage) GetDocumentOwner(ctx context.Context, documentID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.documents[documentID]
	if !exists {
		return "", ErrNotFound
	}
	return doc.UserID, nil
}

func (s *MemoryStorage) GetDocumentChunks(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]models.DocumentChunk, len(s.chunks[documentID]))
	copy(chunks, s.chunks[documentID])
	return chunks, nil
}

func (s *MemoryStorage) SetDocumentStatus(ctx context.Context, documentID string, status models.DocumentStatus, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[documentID]
	if !exists {
		return ErrNotFound
	}
	doc.Status = status
	doc.StatusDetail = detail
	return nil
}

// GetDocument reports the current processing state of a document. It is not
// part of the Storage interface; tests use it to observe status updates.
func (s *MemoryStorage) GetDocument(documentID string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.documents[documentID]
	if !exists {
		return models.Document{}, false
	}
	return *doc, true
}

func (s *MemoryStorage) GetActiveInsights(ctx context.Context, userID string, agentType models.AgentType) ([]models.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var insights []models.Insight
	for _, ins := range s.insights {
		if !ins.IsActive || ins.UserID != userID {
			continue
		}
		if agentType != "" && ins.AgentType != agentType {
			continue
		}
		insights = append(insights, *ins)
	}

	sort.Slice(insights, func(i, j int) bool {
		return insights[i].CreatedAt.After(insights[j].CreatedAt)
	})
	return insights, nil
}

func (s *MemoryStorage) DeactivateInsights(ctx context.Context, userID string, agentType models.AgentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ins := range s.insights {
		if ins.UserID == userID && ins.AgentType == agentType {
			ins.IsActive = false
		}
	}
	return nil
}

func (s *MemoryStorage) SaveInsight(ctx context.Context, insight *models.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	insight.ID = uuid.New().String()
	insight.IsActive = true
	insight.CreatedAt = time.Now()

	stored := *insight
	s.insights = append(s.insights, &stored)
	return nil
}

// AllInsights returns every stored insight, active or not. Test helper.
func (s *MemoryStorage) AllInsights() []models.Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	insights := make([]models.Insight, 0, len(s.insights))
	for _, ins := range s.insights {
		insights = append(insights, *ins)
	}
	return insights
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
