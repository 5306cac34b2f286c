package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/settatam/statusflow/internal/domain"
)

// AutomationRepository implements domain.AutomationRepository using SQLite.
type AutomationRepository struct {
	db *sql.DB
}

// Compile-time check: AutomationRepository implements domain.AutomationRepository.
var _ domain.AutomationRepository = (*AutomationRepository)(nil)

// NewAutomationRepository wraps an existing migrated database connection.
func NewAutomationRepository(db *sql.DB) *AutomationRepository {
	return &AutomationRepository{db: db}
}

const automationColumns = `id, tenant_id, status_id, trigger_on, action_type,
	action_config, sort_order, is_enabled, created_at`

func (r *AutomationRepository) Create(ctx context.Context, a domain.Automation) error {
	actionConfig, err := marshalJSON(a.ActionConfig, "{}")
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO status_automations (`+automationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TenantID, a.StatusID, string(a.Trigger), string(a.ActionType),
		actionConfig, a.SortOrder, a.IsEnabled,
		a.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting automation: %w", err)
	}
	return nil
}

func (r *AutomationRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Automation, error) {
	a, err := scanAutomationColumns(r.db.QueryRowContext(ctx,
		`SELECT `+automationColumns+` FROM status_automations WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	))
	if err == sql.ErrNoRows {
		return domain.Automation{}, domain.ErrAutomationNotFound
	}
	return a, err
}

func (r *AutomationRepository) ListForStatus(ctx context.Context, tenantID, statusID string) ([]domain.Automation, error) {
	return r.query(ctx,
		`SELECT `+automationColumns+` FROM status_automations
		 WHERE tenant_id = ? AND status_id = ?
		 ORDER BY trigger_on, sort_order`,
		tenantID, statusID,
	)
}

// ListForTrigger returns the enabled automations for one (status, trigger)
// pair in execution order.
func (r *AutomationRepository) ListForTrigger(ctx context.Context, tenantID, statusID string, trigger domain.Trigger) ([]domain.Automation, error) {
	return r.query(ctx,
		`SELECT `+automationColumns+` FROM status_automations
		 WHERE tenant_id = ? AND status_id = ? AND trigger_on = ? AND is_enabled = 1
		 ORDER BY sort_order`,
		tenantID, statusID, string(trigger),
	)
}

func (r *AutomationRepository) SetEnabled(ctx context.Context, tenantID, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE status_automations SET is_enabled = ? WHERE tenant_id = ? AND id = ?`,
		enabled, tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("toggling automation: %w", err)
	}
	return requireRow(result, domain.ErrAutomationNotFound)
}

func (r *AutomationRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM status_automations WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("deleting automation: %w", err)
	}
	return requireRow(result, domain.ErrAutomationNotFound)
}

func (r *AutomationRepository) NextSortOrder(ctx context.Context, tenantID, statusID string, trigger domain.Trigger) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM status_automations
		 WHERE tenant_id = ? AND status_id = ? AND trigger_on = ?`,
		tenantID, statusID, string(trigger),
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("computing next sort order: %w", err)
	}
	return next, nil
}

func (r *AutomationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Automation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing automations: %w", err)
	}
	defer rows.Close()

	var automations []domain.Automation
	for rows.Next() {
		a, err := scanAutomationColumns(rows)
		if err != nil {
			return nil, err
		}
		automations = append(automations, a)
	}
	return automations, rows.Err()
}

func scanAutomationColumns(scanner rowScanner) (domain.Automation, error) {
	var a domain.Automation
	var trigger, actionType, actionConfig, createdAt string

	err := scanner.Scan(
		&a.ID, &a.TenantID, &a.StatusID, &trigger, &actionType,
		&actionConfig, &a.SortOrder, &a.IsEnabled, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Automation{}, err
		}
		return domain.Automation{}, fmt.Errorf("scanning automation: %w", err)
	}

	a.Trigger = domain.Trigger(trigger)
	a.ActionType = domain.ActionType(actionType)
	if err := unmarshalJSON(actionConfig, &a.ActionConfig); err != nil {
		return domain.Automation{}, err
	}
	a.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	return a, nil
}
