package otel_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/settatam/statusflow/internal/adapter/otel"
	"github.com/settatam/statusflow/internal/domain"
)

// stubStatusRepo records calls and returns canned results.
type stubStatusRepo struct {
	created  []domain.Status
	getErr   error
	statuses []domain.Status
}

func (s *stubStatusRepo) Create(ctx context.Context, status domain.Status) error {
	s.created = append(s.created, status)
	return nil
}

func (s *stubStatusRepo) GetByID(ctx context.Context, tenantID, id string) (domain.Status, error) {
	if s.getErr != nil {
		return domain.Status{}, s.getErr
	}
	return domain.Status{ID: id, TenantID: tenantID}, nil
}

func (s *stubStatusRepo) GetBySlug(ctx context.Context, tenantID string, entityType domain.EntityType, slug string) (domain.Status, error) {
	return domain.Status{Slug: slug}, nil
}

func (s *stubStatusRepo) List(ctx context.Context, tenantID string, entityType domain.EntityType) ([]domain.Status, error) {
	return s.statuses, nil
}

func (s *stubStatusRepo) Default(ctx context.Context, tenantID string, entityType domain.EntityType) (domain.Status, error) {
	return domain.Status{}, domain.ErrStatusNotFound
}

func (s *stubStatusRepo) Update(ctx context.Context, status domain.Status) error { return nil }

func (s *stubStatusRepo) SetDefault(ctx context.Context, tenantID string, entityType domain.EntityType, id string) error {
	return nil
}

func (s *stubStatusRepo) Reorder(ctx context.Context, tenantID string, entityType domain.EntityType, ids []string) error {
	return nil
}

func (s *stubStatusRepo) Delete(ctx context.Context, tenantID, id string) error { return nil }

func (s *stubStatusRepo) NextSortOrder(ctx context.Context, tenantID string, entityType domain.EntityType) (int, error) {
	return 1, nil
}

func TestTracingStatusRepository_DelegatesToNext(t *testing.T) {
	stub := &stubStatusRepo{}
	repo := adapter.NewTracingStatusRepository(stub)
	ctx := context.Background()

	status := domain.NewStatus("st-1", "t-1", domain.EntityOrder, "pending", "Pending")
	if err := repo.Create(ctx, status); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(stub.created) != 1 {
		t.Fatalf("expected 1 created status, got %d", len(stub.created))
	}

	got, err := repo.GetByID(ctx, "t-1", "st-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != "st-1" {
		t.Errorf("status id = %q, want %q", got.ID, "st-1")
	}
}

func TestTracingStatusRepository_PropagatesErrors(t *testing.T) {
	repo := adapter.NewTracingStatusRepository(&stubStatusRepo{getErr: domain.ErrStatusNotFound})

	_, err := repo.GetByID(context.Background(), "t-1", "missing")
	if !errors.Is(err, domain.ErrStatusNotFound) {
		t.Errorf("GetByID error = %v, want ErrStatusNotFound", err)
	}

	_, err = repo.Default(context.Background(), "t-1", domain.EntityOrder)
	if !errors.Is(err, domain.ErrStatusNotFound) {
		t.Errorf("Default error = %v, want ErrStatusNotFound", err)
	}
}
