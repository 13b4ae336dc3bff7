package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_tenant_store.go -package=mocks corpusqa/internal/storage TenantStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TenantStore defines the interface for tenant row operations.
type TenantStore interface {
	// GetOrCreateByName gets an existing tenant by name, or creates it if it doesn't exist.
	GetOrCreateByName(ctx context.Context, name, collection string) (TenantRecord, error)
	// GetByName gets a tenant by name. Returns ErrNotFound if not found.
	GetByName(ctx context.Context, name string) (TenantRecord, error)
	// ListAll returns all tenants ordered by name.
	ListAll(ctx context.Context) ([]TenantRecord, error)
	// Delete removes a tenant row. Returns ErrNotFound if no row was deleted.
	Delete(ctx context.Context, name string) error
}

// TenantRepo provides methods for tenant operations.
// It implements the TenantStore interface.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo creates a new TenantRepo.
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

// GetOrCreateByName gets an existing tenant by name, or creates it if it doesn't exist.
func (r *TenantRepo) GetOrCreateByName(ctx context.Context, name, collection string) (TenantRecord, error) {
	tenant, err := r.GetByName(ctx, name)
	if err == nil {
		return tenant, nil
	}
	if err != ErrNotFound {
		return TenantRecord{}, err
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO tenants (name, collection) VALUES (?, ?)",
		name, collection,
	)
	if err != nil {
		return TenantRecord{}, fmt.Errorf("failed to insert tenant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return TenantRecord{}, fmt.Errorf("failed to get inserted tenant id: %w", err)
	}

	return r.getByID(ctx, id)
}

// GetByName gets a tenant by name. Returns ErrNotFound if not found.
func (r *TenantRepo) GetByName(ctx context.Context, name string) (TenantRecord, error) {
	var tenant TenantRecord
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, collection, created_at FROM tenants WHERE name = ?",
		name,
	).Scan(&tenant.ID, &tenant.Name, &tenant.Collection, &createdAt)

	if err == sql.ErrNoRows {
		return TenantRecord{}, ErrNotFound
	}
	if err != nil {
		return TenantRecord{}, fmt.Errorf("failed to query tenant: %w", err)
	}

	tenant.CreatedAt = parseSQLiteTime(createdAt)
	return tenant, nil
}

// ListAll returns all tenants ordered by name.
func (r *TenantRepo) ListAll(ctx context.Context) ([]TenantRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, collection, created_at FROM tenants ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tenants []TenantRecord
	for rows.Next() {
		var tenant TenantRecord
		var createdAt string
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Collection, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenant.CreatedAt = parseSQLiteTime(createdAt)
		tenants = append(tenants, tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tenants, nil
}

// Delete removes a tenant row. Returns ErrNotFound if no row was deleted.
// Segment and conversation rows cascade via foreign keys.
func (r *TenantRepo) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tenants WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *TenantRepo) getByID(ctx context.Context, id int64) (TenantRecord, error) {
	var tenant TenantRecord
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, collection, created_at FROM tenants WHERE id = ?",
		id,
	).Scan(&tenant.ID, &tenant.Name, &tenant.Collection, &createdAt)

	if err == sql.ErrNoRows {
		return TenantRecord{}, ErrNotFound
	}
	if err != nil {
		return TenantRecord{}, fmt.Errorf("failed to query tenant: %w", err)
	}

	tenant.CreatedAt = parseSQLiteTime(createdAt)
	return tenant, nil
}

// parseSQLiteTime parses DATETIME values in the formats SQLite emits.
func parseSQLiteTime(value string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
