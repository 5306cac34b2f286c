package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/settatam/statusflow/internal/domain"
)

// StatusRepository implements domain.StatusRepository using SQLite.
type StatusRepository struct {
	db *sql.DB
}

// Compile-time check: StatusRepository implements domain.StatusRepository.
var _ domain.StatusRepository = (*StatusRepository)(nil)

// NewStatusRepository wraps an existing migrated database connection.
func NewStatusRepository(db *sql.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

const statusColumns = `id, tenant_id, entity_type, slug, name, color, icon, description,
	is_default, is_final, is_system, sort_order, behavior, created_at, updated_at`

func (r *StatusRepository) Create(ctx context.Context, s domain.Status) error {
	behavior, err := marshalJSON(s.Behavior, "{}")
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO statuses (`+statusColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.TenantID, string(s.EntityType), s.Slug, s.Name, s.Color, s.Icon, s.Description,
		s.IsDefault, s.IsFinal, s.IsSystem, s.SortOrder, behavior,
		s.CreatedAt.Format(timeFormat),
		s.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ValidationError{Field: "slug", Message: fmt.Sprintf("slug %q is already in use for %s statuses", s.Slug, s.EntityType)}
		}
		return fmt.Errorf("inserting status: %w", err)
	}
	return nil
}

func (r *StatusRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Status, error) {
	return scanStatus(r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM statuses WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	))
}

func (r *StatusRepository) GetBySlug(ctx context.Context, tenantID string, entityType domain.EntityType, slug string) (domain.Status, error) {
	return scanStatus(r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM statuses
		 WHERE tenant_id = ? AND entity_type = ? AND slug = ?`,
		tenantID, string(entityType), slug,
	))
}

func (r *StatusRepository) Default(ctx context.Context, tenantID string, entityType domain.EntityType) (domain.Status, error) {
	return scanStatus(r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM statuses
		 WHERE tenant_id = ? AND entity_type = ? AND is_default = 1`,
		tenantID, string(entityType),
	))
}

func (r *StatusRepository) List(ctx context.Context, tenantID string, entityType domain.EntityType) ([]domain.Status, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statusColumns+` FROM statuses
		 WHERE tenant_id = ? AND entity_type = ?
		 ORDER BY sort_order, slug`,
		tenantID, string(entityType),
	)
	if err != nil {
		return nil, fmt.Errorf("listing statuses: %w", err)
	}
	defer rows.Close()

	var statuses []domain.Status
	for rows.Next() {
		s, err := scanStatusFromRows(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *StatusRepository) Update(ctx context.Context, s domain.Status) error {
	behavior, err := marshalJSON(s.Behavior, "{}")
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE statuses SET name = ?, color = ?, icon = ?, description = ?, behavior = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		s.Name, s.Color, s.Icon, s.Description, behavior,
		time.Now().UTC().Format(timeFormat),
		s.TenantID, s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return requireRow(result, domain.ErrStatusNotFound)
}

// SetDefault unsets is_default on the scope's other statuses and sets it
// on the target, all in one transaction so no intermediate state with zero
// or multiple defaults is observable.
func (r *StatusRepository) SetDefault(ctx context.Context, tenantID string, entityType domain.EntityType, id string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE statuses SET is_default = 0, updated_at = ?
			 WHERE tenant_id = ? AND entity_type = ? AND is_default = 1 AND id <> ?`,
			time.Now().UTC().Format(timeFormat), tenantID, string(entityType), id,
		); err != nil {
			return fmt.Errorf("unsetting previous default: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE statuses SET is_default = 1, updated_at = ?
			 WHERE tenant_id = ? AND entity_type = ? AND id = ?`,
			time.Now().UTC().Format(timeFormat), tenantID, string(entityType), id,
		)
		if err != nil {
			return fmt.Errorf("setting default: %w", err)
		}
		return requireRow(result, domain.ErrStatusNotFound)
	})
}

// Reorder assigns positional sort orders in one transaction. Every id must
// belong to the (tenant, entity type) scope; the whole batch is rejected
// otherwise.
func (r *StatusRepository) Reorder(ctx context.Context, tenantID string, entityType domain.EntityType, ids []string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for position, id := range ids {
			result, err := tx.ExecContext(ctx,
				`UPDATE statuses SET sort_order = ?, updated_at = ?
				 WHERE tenant_id = ? AND entity_type = ? AND id = ?`,
				position, time.Now().UTC().Format(timeFormat),
				tenantID, string(entityType), id,
			)
			if err != nil {
				return fmt.Errorf("reordering status %s: %w", id, err)
			}
			rows, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("checking rows affected: %w", err)
			}
			if rows == 0 {
				return &domain.ValidationError{Field: "ids", Message: fmt.Sprintf("status %q does not belong to this tenant's %s statuses", id, entityType)}
			}
		}
		return nil
	})
}

// Delete removes a status after verifying nothing references it. The
// reference checks and the delete share one transaction.
func (r *StatusRepository) Delete(ctx context.Context, tenantID, id string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		status, err := scanStatus(tx.QueryRowContext(ctx,
			`SELECT `+statusColumns+` FROM statuses WHERE tenant_id = ? AND id = ?`,
			tenantID, id,
		))
		if err != nil {
			return err
		}

		var transitionRefs int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM status_transitions
			 WHERE tenant_id = ? AND (from_status_id = ? OR to_status_id = ?)`,
			tenantID, id, id,
		).Scan(&transitionRefs); err != nil {
			return fmt.Errorf("counting transition references: %w", err)
		}
		if transitionRefs > 0 {
			return &domain.ProtectedResourceError{Slug: status.Slug, Reason: fmt.Sprintf("%d transitions reference this status", transitionRefs)}
		}

		var automationRefs int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM status_automations WHERE tenant_id = ? AND status_id = ?`,
			tenantID, id,
		).Scan(&automationRefs); err != nil {
			return fmt.Errorf("counting automation references: %w", err)
		}
		if automationRefs > 0 {
			return &domain.ProtectedResourceError{Slug: status.Slug, Reason: fmt.Sprintf("%d automations are bound to this status", automationRefs)}
		}

		var entityRefs int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM entities WHERE tenant_id = ? AND status_id = ?`,
			tenantID, id,
		).Scan(&entityRefs); err != nil {
			return fmt.Errorf("counting entity references: %w", err)
		}
		if entityRefs > 0 {
			return &domain.ProtectedResourceError{Slug: status.Slug, Reason: fmt.Sprintf("%d entities are currently in this status", entityRefs)}
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM statuses WHERE tenant_id = ? AND id = ?`,
			tenantID, id,
		)
		if err != nil {
			return fmt.Errorf("deleting status: %w", err)
		}
		return requireRow(result, domain.ErrStatusNotFound)
	})
}

func (r *StatusRepository) NextSortOrder(ctx context.Context, tenantID string, entityType domain.EntityType) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM statuses
		 WHERE tenant_id = ? AND entity_type = ?`,
		tenantID, string(entityType),
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("computing next sort order: %w", err)
	}
	return next, nil
}

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row *sql.Row) (domain.Status, error) {
	s, err := scanStatusColumns(row)
	if err == sql.ErrNoRows {
		return domain.Status{}, domain.ErrStatusNotFound
	}
	return s, err
}

func scanStatusFromRows(rows *sql.Rows) (domain.Status, error) {
	return scanStatusColumns(rows)
}

func scanStatusColumns(scanner rowScanner) (domain.Status, error) {
	var s domain.Status
	var entityType, behavior, createdAt, updatedAt string

	err := scanner.Scan(
		&s.ID, &s.TenantID, &entityType, &s.Slug, &s.Name, &s.Color, &s.Icon, &s.Description,
		&s.IsDefault, &s.IsFinal, &s.IsSystem, &s.SortOrder, &behavior, &createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Status{}, err
		}
		return domain.Status{}, fmt.Errorf("scanning status: %w", err)
	}

	s.EntityType = domain.EntityType(entityType)
	if err := unmarshalJSON(behavior, &s.Behavior); err != nil {
		return domain.Status{}, err
	}
	s.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	s.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return s, nil
}

// requireRow maps a zero-row update/delete to notFound.
func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
