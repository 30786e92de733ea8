package models

import "time"

// InsightType distinguishes a full analysis from a single recommendation.
type InsightType string

const (
	InsightAnalysis       InsightType = "analysis"
	InsightRecommendation InsightType = "recommendation"
)

// Insight is the persisted form of analyzer output. Insights are never
// deleted; a fresh run for the same (user, agent type) deactivates the
// previous generation before inserting the new one.
type Insight struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	AgentType       AgentType        `json:"agent_type"`
	InsightType     InsightType      `json:"insight_type"`
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	Recommendations []Recommendation `json:"recommendations"`
	PriorityScore   int              `json:"priority_score"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
}

// DocumentStatus tracks the processing state of an ingested document.
type DocumentStatus string

const (
	DocumentUploaded  DocumentStatus = "uploaded"
	DocumentProcessed DocumentStatus = "processed"
	DocumentFailed    DocumentStatus = "failed"
)

// Document is an ingested financial document. Ingestion itself is owned by
// an external pipeline; the analysis engine only reads ownership and chunks
// and writes processing status.
type Document struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Status       DocumentStatus `json:"upload_status"`
	StatusDetail string         `json:"status_detail,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// DocumentChunk is a slice of extracted document text used as analysis
// context.
type DocumentChunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	Content    string `json:"content"`
}
