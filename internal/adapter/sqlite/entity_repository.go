package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/settatam/statusflow/internal/domain"
)

// EntityRepository implements domain.EntityRepository over the generic
// entities table and exposes per-type domain.EntityStore views through
// Store, so one table can serve every entity type in the registry.
type EntityRepository struct {
	db *sql.DB
}

// Compile-time check: EntityRepository implements domain.EntityRepository.
var _ domain.EntityRepository = (*EntityRepository)(nil)

// NewEntityRepository wraps an existing migrated database connection.
func NewEntityRepository(db *sql.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

const entityColumns = `id, tenant_id, entity_type, status_id, data, created_at, updated_at`

func (r *EntityRepository) Create(ctx context.Context, e domain.Entity) error {
	data, err := marshalJSON(e.Data, "{}")
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO entities (`+entityColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TenantID, string(e.Type), e.StatusID, data,
		e.CreatedAt.Format(timeFormat),
		e.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting entity: %w", err)
	}
	return nil
}

func (r *EntityRepository) Get(ctx context.Context, tenantID string, entityType domain.EntityType, id string) (domain.Entity, error) {
	e, err := scanEntityColumns(r.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities
		 WHERE tenant_id = ? AND entity_type = ? AND id = ?`,
		tenantID, string(entityType), id,
	))
	if err == sql.ErrNoRows {
		return domain.Entity{}, domain.ErrEntityNotFound
	}
	return e, err
}

// swapStatus performs the compare-and-swap status update and the history
// append in one transaction. Zero affected rows means either the entity is
// gone or another transition won the race; the follow-up existence check
// distinguishes the two.
func (r *EntityRepository) swapStatus(ctx context.Context, tenantID string, entityType domain.EntityType, id, fromStatusID, toStatusID string, rec domain.HistoryRecord) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE entities SET status_id = ?, updated_at = ?
			 WHERE tenant_id = ? AND entity_type = ? AND id = ? AND status_id = ?`,
			toStatusID, time.Now().UTC().Format(timeFormat),
			tenantID, string(entityType), id, fromStatusID,
		)
		if err != nil {
			return fmt.Errorf("updating entity status: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			var count int64
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM entities WHERE tenant_id = ? AND entity_type = ? AND id = ?`,
				tenantID, string(entityType), id,
			).Scan(&count); err != nil {
				return fmt.Errorf("checking entity existence: %w", err)
			}
			if count == 0 {
				return domain.ErrEntityNotFound
			}
			return domain.ErrStatusConflict
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO status_history (id, tenant_id, entity_type, entity_id, from_status_id, to_status_id, actor, notes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.TenantID, string(rec.EntityType), rec.EntityID,
			rec.FromStatusID, rec.ToStatusID, rec.Actor, rec.Notes,
			rec.CreatedAt.Format(timeFormat),
		)
		if err != nil {
			return fmt.Errorf("appending history: %w", err)
		}
		return nil
	})
}

func (r *EntityRepository) countInStatus(ctx context.Context, tenantID, statusID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entities WHERE tenant_id = ? AND status_id = ?`,
		tenantID, statusID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting entities in status: %w", err)
	}
	return count, nil
}

func (r *EntityRepository) history(ctx context.Context, tenantID string, entityType domain.EntityType, id string) ([]domain.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, entity_type, entity_id, from_status_id, to_status_id, actor, notes, created_at
		 FROM status_history
		 WHERE tenant_id = ? AND entity_type = ? AND entity_id = ?
		 ORDER BY created_at DESC, id`,
		tenantID, string(entityType), id,
	)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var recType, createdAt string
		if err := rows.Scan(
			&rec.ID, &rec.TenantID, &recType, &rec.EntityID,
			&rec.FromStatusID, &rec.ToStatusID, &rec.Actor, &rec.Notes, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		rec.EntityType = domain.EntityType(recType)
		rec.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Store returns the domain.EntityStore view for one entity type, suitable
// for registration in a domain.StoreRegistry.
func (r *EntityRepository) Store(entityType domain.EntityType) domain.EntityStore {
	return &typedStore{repo: r, entityType: entityType}
}

// typedStore binds an EntityRepository to one entity type.
type typedStore struct {
	repo       *EntityRepository
	entityType domain.EntityType
}

// Compile-time check: typedStore implements domain.EntityStore.
var _ domain.EntityStore = (*typedStore)(nil)

func (s *typedStore) Get(ctx context.Context, tenantID, id string) (domain.Statusable, error) {
	return s.repo.Get(ctx, tenantID, s.entityType, id)
}

func (s *typedStore) SwapStatus(ctx context.Context, tenantID, id, fromStatusID, toStatusID string, record domain.HistoryRecord) error {
	return s.repo.swapStatus(ctx, tenantID, s.entityType, id, fromStatusID, toStatusID, record)
}

func (s *typedStore) CountInStatus(ctx context.Context, tenantID, statusID string) (int64, error) {
	return s.repo.countInStatus(ctx, tenantID, statusID)
}

func (s *typedStore) History(ctx context.Context, tenantID, id string) ([]domain.HistoryRecord, error) {
	return s.repo.history(ctx, tenantID, s.entityType, id)
}

func scanEntityColumns(scanner rowScanner) (domain.Entity, error) {
	var e domain.Entity
	var entityType, data, createdAt, updatedAt string

	err := scanner.Scan(&e.ID, &e.TenantID, &entityType, &e.StatusID, &data, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Entity{}, err
		}
		return domain.Entity{}, fmt.Errorf("scanning entity: %w", err)
	}

	e.Type = domain.EntityType(entityType)
	if err := unmarshalJSON(data, &e.Data); err != nil {
		return domain.Entity{}, err
	}
	e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	e.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return e, nil
}
