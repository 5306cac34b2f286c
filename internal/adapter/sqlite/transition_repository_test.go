package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/settatam/statusflow/internal/adapter/sqlite"
	"github.com/settatam/statusflow/internal/domain"
)

// seedGraph creates two order statuses and returns them.
func seedGraph(t *testing.T, repo *sqlite.StatusRepository) (domain.Status, domain.Status) {
	t.Helper()
	from := orderStatus("st-from", "pending")
	to := orderStatus("st-to", "confirmed")
	mustCreateStatus(t, repo, from)
	mustCreateStatus(t, repo, to)
	return from, to
}

func TestTransitionCreate_And_GetByID(t *testing.T) {
	db := newTestDB(t)
	statuses := sqlite.NewStatusRepository(db)
	repo := sqlite.NewTransitionRepository(db)
	ctx := context.Background()

	from, to := seedGraph(t, statuses)

	tr := domain.NewTransition("tr-1", from, to)
	tr.Conditions = []domain.Condition{{Field: "payment_status", Op: domain.OpEq, Value: "paid"}}
	tr.RequiredFields = []string{"confirmed_by"}

	if err := repo.Create(ctx, tr); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "t-1", "tr-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FromStatusID != "st-from" || got.ToStatusID != "st-to" {
		t.Errorf("edge = %s->%s, want st-from->st-to", got.FromStatusID, got.ToStatusID)
	}
	if len(got.Conditions) != 1 || got.Conditions[0].Field != "payment_status" {
		t.Errorf("Conditions = %v, want payment_status guard", got.Conditions)
	}
	if len(got.RequiredFields) != 1 || got.RequiredFields[0] != "confirmed_by" {
		t.Errorf("RequiredFields = %v, want [confirmed_by]", got.RequiredFields)
	}
	if !got.IsEnabled {
		t.Error("new transitions should be enabled")
	}
}

func TestTransitionCreate_DuplicateEdge(t *testing.T) {
	db := newTestDB(t)
	statuses := sqlite.NewStatusRepository(db)
	repo := sqlite.NewTransitionRepository(db)
	ctx := context.Background()

	from, to := seedGraph(t, statuses)

	if err := repo.Create(ctx, domain.NewTransition("tr-1", from, to)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repo.Create(ctx, domain.NewTransition("tr-2", from, to))
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for duplicate edge, got %v", err)
	}
}

func TestTransitionListFrom(t *testing.T) {
	db := newTestDB(t)
	statuses := sqlite.NewStatusRepository(db)
	repo := sqlite.NewTransitionRepository(db)
	ctx := context.Background()

	from, to := seedGraph(t, statuses)
	third := orderStatus("st-cancelled", "cancelled")
	mustCreateStatus(t, statuses, third)

	if err := repo.Create(ctx, domain.NewTransition("tr-1", from, to)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, domain.NewTransition("tr-2", from, third)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, domain.NewTransition("tr-3", to, third)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	edges, err := repo.ListFrom(ctx, "t-1", "st-from")
	if err != nil {
		t.Fatalf("ListFrom failed: %v", err)
	}
	if len(edges) != 2 {
		t.Errorf("len = %d, want 2", len(edges))
	}
}

func TestTransitionExists(t *testing.T) {
	db := newTestDB(t)
	statuses := sqlite.NewStatusRepository(db)
	repo := sqlite.NewTransitionRepository(db)
	ctx := context.Background()

	from, to := seedGraph(t, statuses)

	exists, err := repo.Exists(ctx, "t-1", from.ID, to.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("edge should not exist yet")
	}

	if err := repo.Create(ctx, domain.NewTransition("tr-1", from, to)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err = repo.Exists(ctx, "t-1", from.ID, to.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("edge should exist")
	}
}

func TestTransitionSetEnabled(t *testing.T) {
	db := newTestDB(t)
	statuses := sqlite.NewStatusRepository(db)
	repo := sqlite.NewTransitionRepository(db)
	ctx := context.Background()

	from, to := seedGraph(t, statuses)
	if err := repo.Create(ctx, domain.NewTransition("tr-1", from, to)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.SetEnabled(ctx, "t-1", "tr-1", false); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "t-1", "tr-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.IsEnabled {
		t.Error("transition should be disabled")
	}
}

func TestTransitionDelete(t *testing.T) {
	db := newTestDB(t)
	statuses := sqlite.NewStatusRepository(db)
	repo := sqlite.NewTransitionRepository(db)
	ctx := context.Background()

	from, to := seedGraph(t, statuses)
	if err := repo.Create(ctx, domain.NewTransition("tr-1", from, to)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(ctx, "t-1", "tr-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := repo.GetByID(ctx, "t-1", "tr-1")
	if !errors.Is(err, domain.ErrTransitionNotFound) {
		t.Errorf("expected ErrTransitionNotFound after delete, got %v", err)
	}
}
