package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrOrphanNotFound = errors.New("orphan record not found")

// Orphan is an identity whose profile write failed and whose compensating
// deletion failed too. The sweeper retries deletion until resolved.
type Orphan struct {
	ID         string     `json:"id"`
	UID        string     `json:"uid"`
	Email      string     `json:"email"`
	Reason     string     `json:"reason"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ProvisionLedger handles PostgreSQL operations for the reconciliation table
type ProvisionLedger struct {
	db *sql.DB
}

func NewProvisionLedger(db *sql.DB) *ProvisionLedger {
	return &ProvisionLedger{db: db}
}

// RecordOrphan writes a new unresolved orphan row.
func (l *ProvisionLedger) RecordOrphan(ctx context.Context, uid, email, reason string) error {
	query := `
		INSERT INTO provision_orphans (id, uid, email, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	var createdAt, updatedAt time.Time
	err := l.db.QueryRowContext(ctx, query, uuid.New().String(), uid, email, reason).
		Scan(&createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("failed to record orphan: %w", err)
	}

	return nil
}

// ListUnresolved returns the oldest unresolved orphans, up to limit.
func (l *ProvisionLedger) ListUnresolved(ctx context.Context, limit int) ([]Orphan, error) {
	query := `
		SELECT id, uid, email, reason, resolved_at, created_at, updated_at
		FROM provision_orphans
		WHERE resolved_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphans: %w", err)
	}
	defer rows.Close()

	var orphans []Orphan
	for rows.Next() {
		var o Orphan
		var resolvedAt sql.NullTime
		if err := rows.Scan(&o.ID, &o.UID, &o.Email, &o.Reason, &resolvedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan orphan: %w", err)
		}
		if resolvedAt.Valid {
			o.ResolvedAt = &resolvedAt.Time
		}
		orphans = append(orphans, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orphans: %w", err)
	}

	return orphans, nil
}

// MarkResolved stamps an orphan row as cleaned up.
func (l *ProvisionLedger) MarkResolved(ctx context.Context, id string) error {
	query := `
		UPDATE provision_orphans
		SET resolved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND resolved_at IS NULL
	`

	result, err := l.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to resolve orphan: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrphanNotFound
	}

	return nil
}
