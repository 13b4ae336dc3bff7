package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_segment_store.go -package=mocks corpusqa/internal/storage SegmentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// SegmentStore defines the interface for segment storage operations.
type SegmentStore interface {
	// InsertBatch inserts segments inside a single transaction.
	// Each segment.ID must be set (UUID) before calling this method.
	InsertBatch(ctx context.Context, segments []*SegmentRecord) error
	// GetByID gets a segment by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*SegmentRecord, error)
	// DeleteByTenant deletes all segments for a tenant.
	DeleteByTenant(ctx context.Context, tenantID int64) error
	// CountByTenant returns the segment count and distinct source count for a tenant.
	CountByTenant(ctx context.Context, tenantID int64) (segments int, sources int, err error)
}

// SegmentRepo provides methods for segment operations.
// It implements the SegmentStore interface.
type SegmentRepo struct {
	db *sql.DB
}

// NewSegmentRepo creates a new SegmentRepo.
func NewSegmentRepo(db *sql.DB) *SegmentRepo {
	return &SegmentRepo{db: db}
}

// InsertBatch inserts segments inside a single transaction so concurrent
// readers observe either none or all of a batch.
func (r *SegmentRepo) InsertBatch(ctx context.Context, segments []*SegmentRecord) error {
	if len(segments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, segment := range segments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO segments (id, tenant_id, source, page, seq, text) VALUES (?, ?, ?, ?, ?, ?)",
			segment.ID, segment.TenantID, segment.Source, segment.Page, segment.Seq, segment.Text,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert segment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit segment batch: %w", err)
	}
	return nil
}

// GetByID gets a segment by its ID. Returns ErrNotFound if not found.
func (r *SegmentRepo) GetByID(ctx context.Context, id string) (*SegmentRecord, error) {
	var segment SegmentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, tenant_id, source, page, seq, text FROM segments WHERE id = ?",
		id,
	).Scan(&segment.ID, &segment.TenantID, &segment.Source, &segment.Page, &segment.Seq, &segment.Text)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query segment: %w", err)
	}

	return &segment, nil
}

// DeleteByTenant deletes all segments for a tenant.
func (r *SegmentRepo) DeleteByTenant(ctx context.Context, tenantID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM segments WHERE tenant_id = ?", tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete segments by tenant: %w", err)
	}
	return nil
}

// CountByTenant returns the segment count and distinct source count for a tenant.
func (r *SegmentRepo) CountByTenant(ctx context.Context, tenantID int64) (int, int, error) {
	var segments, sources int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT source) FROM segments WHERE tenant_id = ?",
		tenantID,
	).Scan(&segments, &sources)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count segments: %w", err)
	}
	return segments, sources, nil
}
