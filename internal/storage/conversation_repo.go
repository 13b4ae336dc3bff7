package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ConversationStore defines the interface for the append-only conversation log.
type ConversationStore interface {
	// Append records one question/answer exchange for a tenant.
	Append(ctx context.Context, record *ConversationRecord) error
	// ListByTenant returns exchanges for a tenant, newest first, capped at limit.
	ListByTenant(ctx context.Context, tenantID int64, limit int) ([]ConversationRecord, error)
	// ClearByTenant removes all logged exchanges for a tenant.
	ClearByTenant(ctx context.Context, tenantID int64) error
}

// ConversationRepo provides methods for conversation log operations.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Append records one question/answer exchange for a tenant.
func (r *ConversationRepo) Append(ctx context.Context, record *ConversationRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO conversations (id, tenant_id, question, answer, confidence, citations) VALUES (?, ?, ?, ?, ?, ?)",
		record.ID, record.TenantID, record.Question, record.Answer, record.Confidence, record.Citations,
	)
	if err != nil {
		return fmt.Errorf("failed to append conversation: %w", err)
	}
	return nil
}

// ListByTenant returns exchanges for a tenant, newest first, capped at limit.
func (r *ConversationRepo) ListByTenant(ctx context.Context, tenantID int64, limit int) ([]ConversationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, tenant_id, question, answer, confidence, citations, created_at FROM conversations WHERE tenant_id = ? ORDER BY created_at DESC LIMIT ?",
		tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []ConversationRecord
	for rows.Next() {
		var record ConversationRecord
		var createdAt string
		if err := rows.Scan(&record.ID, &record.TenantID, &record.Question, &record.Answer,
			&record.Confidence, &record.Citations, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		record.CreatedAt = parseSQLiteTime(createdAt)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// ClearByTenant removes all logged exchanges for a tenant.
func (r *ConversationRepo) ClearByTenant(ctx context.Context, tenantID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM conversations WHERE tenant_id = ?", tenantID)
	if err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}
	return nil
}
