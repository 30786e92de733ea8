package models

// AgentType identifies one of the specialized financial analyzers.
type AgentType string

const (
	AgentDebtAnalyzer    AgentType = "debt_analyzer"
	AgentSavingsStrategy AgentType = "savings_strategy"
	AgentBudgetOptimizer AgentType = "budget_optimizer"
)

// AllAgentTypes lists the known analyzers in their fixed orchestration order.
var AllAgentTypes = []AgentType{
	AgentDebtAnalyzer,
	AgentSavingsStrategy,
	AgentBudgetOptimizer,
}

// Recommendation is a single actionable item produced by an analyzer.
// It has no identity of its own; it belongs to the result that created it.
type Recommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Impact      string `json:"impact"`
}

// AnalyzerResult is the output of one analyzer run. It is consumed by the
// orchestrator's merge step and never persisted as-is.
type AnalyzerResult struct {
	AgentType       AgentType          `json:"agent_type"`
	Narrative       string             `json:"analysis"`
	Recommendations []Recommendation   `json:"recommendations"`
	Metrics         map[string]float64 `json:"metrics"`
	PriorityScore   int                `json:"priority_score"`
}

// AnalysisReport is the merged output of a full document analysis.
type AnalysisReport struct {
	DocumentID string                        `json:"document_id"`
	UserID     string                        `json:"user_id"`
	Analyses   map[AgentType]*AnalyzerResult `json:"analyses"`
	Summary    string                        `json:"summary"`
}
