package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rupai/finagents/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetFinancialRecords(ctx context.Context, userID string) ([]models.FinancialRecord, error) {
	query := `
		SELECT id, user_id, data_type, category, amount, interest_rate
		FROM financial_records
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying financial records: %v", err)
	}
	defer rows.Close()

	var records []models.FinancialRecord
	for rows.Next() {
		var rec models.FinancialRecord
		var rate sql.NullFloat64
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.DataType,
			&rec.Category,
			&rec.Amount,
			&rate,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning financial record: %v", err)
		}
		if rate.Valid {
			v := rate.Float64
			rec.InterestRate = &v
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *PostgresStorage) GetFinancialSummary(ctx context.Context, userID string) (*models.FinancialSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE data_type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE data_type = 'expense'), 0),
			COALESCE(SUM(amount) FILTER (WHERE data_type = 'debt'), 0),
			COALESCE(SUM(amount) FILTER (WHERE data_type = 'savings'), 0)
		FROM financial_records
		WHERE user_id = $1`

	var income, expenses, debt, savings decimal.Decimal
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&income, &expenses, &debt, &savings)
	if err != nil {
		return nil, fmt.Errorf("error querying financial summary: %v", err)
	}

	return buildSummary(userID, income, expenses, debt, savings), nil
}

func (s *PostgresStorage) GetDocumentOwner(ctx context.Context, documentID string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM financial_documents WHERE id = $1`, documentID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error querying document owner: %v", err)
	}
	return userID, nil
}

func (s *PostgresStorage) GetDocumentChunks(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
	query := `
		SELECT id, document_id, user_id, content
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("error querying document chunks: %v", err)
	}
	defer rows.Close()

	var chunks []models.DocumentChunk
	for rows.Next() {
		var chunk models.DocumentChunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.UserID, &chunk.Content); err != nil {
			return nil, fmt.Errorf("error scanning document chunk: %v", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

func (s *PostgresStorage) SetDocumentStatus(ctx context.Context, documentID string, status models.DocumentStatus, detail string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE financial_documents SET upload_status = $1, status_detail = $2 WHERE id = $3`,
		status, detail, documentID)
	if err != nil {
		return fmt.Errorf("error updating document status: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) GetActiveInsights(ctx context.Context, userID string, agentType models.AgentType) ([]models.Insight, error) {
	query := `
		SELECT id, user_id, agent_type, insight_type, title, content, recommendations, priority_score, is_active, created_at
		FROM agent_insights
		WHERE user_id = $1 AND is_active = TRUE`
	args := []interface{}{userID}
	if agentType != "" {
		query += ` AND agent_type = $2`
		args = append(args, agentType)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying insights: %v", err)
	}
	defer rows.Close()

	var insights []models.Insight
	for rows.Next() {
		var ins models.Insight
		var recs []byte
		err := rows.Scan(
			&ins.ID,
			&ins.UserID,
			&ins.AgentType,
			&ins.InsightType,
			&ins.Title,
			&ins.Content,
			&recs,
			&ins.PriorityScore,
			&ins.IsActive,
			&ins.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning insight: %v", err)
		}
		if err := json.Unmarshal(recs, &ins.Recommendations); err != nil {
			return nil, fmt.Errorf("error decoding recommendations: %v", err)
		}
		insights = append(insights, ins)
	}

	return insights, rows.Err()
}

func (s *PostgresStorage) DeactivateInsights(ctx context.Context, userID string, agentType models.AgentType) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE agent_insights SET is_active = FALSE WHERE user_id = $1 AND agent_type = $2 AND is_active = TRUE`,
		userID, agentType)
	if err != nil {
		return fmt.Errorf("error deactivating insights: %v", err)
	}
	return nil
}

func (s *PostgresStorage) SaveInsight(ctx context.Context, insight *models.Insight) error {
	recs, err := json.Marshal(insight.Recommendations)
	if err != nil {
		return fmt.Errorf("error encoding recommendations: %v", err)
	}

	query := `
		INSERT INTO agent_insights (user_id, agent_type, insight_type, title, content, recommendations, priority_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at`

	err = s.db.QueryRowContext(
		ctx,
		query,
		insight.UserID,
		insight.AgentType,
		insight.InsightType,
		insight.Title,
		insight.Content,
		recs,
		insight.PriorityScore,
	).Scan(&insight.ID, &insight.IsActive, &insight.CreatedAt)

	if err != nil {
		return fmt.Errorf("error saving insight: %v", err)
	}

	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
