package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/settatam/statusflow/internal/domain"
)

// TransitionRepository implements domain.TransitionRepository using SQLite.
type TransitionRepository struct {
	db *sql.DB
}

// Compile-time check: TransitionRepository implements domain.TransitionRepository.
var _ domain.TransitionRepository = (*TransitionRepository)(nil)

// NewTransitionRepository wraps an existing migrated database connection.
func NewTransitionRepository(db *sql.DB) *TransitionRepository {
	return &TransitionRepository{db: db}
}

const transitionColumns = `id, tenant_id, entity_type, from_status_id, to_status_id,
	conditions, required_fields, is_enabled, created_at`

func (r *TransitionRepository) Create(ctx context.Context, t domain.Transition) error {
	conditions, err := marshalJSON(t.Conditions, "[]")
	if err != nil {
		return err
	}
	requiredFields, err := marshalJSON(t.RequiredFields, "[]")
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO status_transitions (`+transitionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TenantID, string(t.EntityType), t.FromStatusID, t.ToStatusID,
		conditions, requiredFields, t.IsEnabled,
		t.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ValidationError{Field: "to_status_id", Message: "a transition between these statuses already exists"}
		}
		return fmt.Errorf("inserting transition: %w", err)
	}
	return nil
}

func (r *TransitionRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Transition, error) {
	t, err := scanTransition(r.db.QueryRowContext(ctx,
		`SELECT `+transitionColumns+` FROM status_transitions WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	))
	if err != nil {
		return domain.Transition{}, err
	}
	return t, nil
}

func (r *TransitionRepository) ListFrom(ctx context.Context, tenantID, fromStatusID string) ([]domain.Transition, error) {
	return r.query(ctx,
		`SELECT `+transitionColumns+` FROM status_transitions
		 WHERE tenant_id = ? AND from_status_id = ?
		 ORDER BY created_at`,
		tenantID, fromStatusID,
	)
}

func (r *TransitionRepository) List(ctx context.Context, tenantID string, entityType domain.EntityType) ([]domain.Transition, error) {
	return r.query(ctx,
		`SELECT `+transitionColumns+` FROM status_transitions
		 WHERE tenant_id = ? AND entity_type = ?
		 ORDER BY created_at`,
		tenantID, string(entityType),
	)
}

func (r *TransitionRepository) Exists(ctx context.Context, tenantID, fromStatusID, toStatusID string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM status_transitions
		 WHERE tenant_id = ? AND from_status_id = ? AND to_status_id = ?`,
		tenantID, fromStatusID, toStatusID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for existing transition: %w", err)
	}
	return count > 0, nil
}

func (r *TransitionRepository) SetEnabled(ctx context.Context, tenantID, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE status_transitions SET is_enabled = ? WHERE tenant_id = ? AND id = ?`,
		enabled, tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("toggling transition: %w", err)
	}
	return requireRow(result, domain.ErrTransitionNotFound)
}

func (r *TransitionRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM status_transitions WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("deleting transition: %w", err)
	}
	return requireRow(result, domain.ErrTransitionNotFound)
}

func (r *TransitionRepository) query(ctx context.Context, query string, args ...any) ([]domain.Transition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transitions: %w", err)
	}
	defer rows.Close()

	var transitions []domain.Transition
	for rows.Next() {
		t, err := scanTransitionColumns(rows)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

func scanTransition(row *sql.Row) (domain.Transition, error) {
	t, err := scanTransitionColumns(row)
	if err == sql.ErrNoRows {
		return domain.Transition{}, domain.ErrTransitionNotFound
	}
	return t, err
}

func scanTransitionColumns(scanner rowScanner) (domain.Transition, error) {
	var t domain.Transition
	var entityType, conditions, requiredFields, createdAt string

	err := scanner.Scan(
		&t.ID, &t.TenantID, &entityType, &t.FromStatusID, &t.ToStatusID,
		&conditions, &requiredFields, &t.IsEnabled, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Transition{}, err
		}
		return domain.Transition{}, fmt.Errorf("scanning transition: %w", err)
	}

	t.EntityType = domain.EntityType(entityType)
	if err := unmarshalJSON(conditions, &t.Conditions); err != nil {
		return domain.Transition{}, err
	}
	if err := unmarshalJSON(requiredFields, &t.RequiredFields); err != nil {
		return domain.Transition{}, err
	}
	t.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	return t, nil
}
