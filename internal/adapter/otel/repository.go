package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/settatam/statusflow/internal/domain"
)

const tracerName = "github.com/settatam/statusflow/internal/adapter/otel"

// TracingStatusRepository wraps a domain.StatusRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and records
// errors.
type TracingStatusRepository struct {
	next   domain.StatusRepository
	tracer trace.Tracer
}

// Compile-time check: TracingStatusRepository implements domain.StatusRepository.
var _ domain.StatusRepository = (*TracingStatusRepository)(nil)

// NewTracingStatusRepository creates a tracing decorator around the given
// repository.
func NewTracingStatusRepository(next domain.StatusRepository) *TracingStatusRepository {
	return &TracingStatusRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingStatusRepository) Create(ctx context.Context, status domain.Status) error {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.Create",
		trace.WithAttributes(
			attribute.String("tenant.id", status.TenantID),
			attribute.String("entity.type", string(status.EntityType)),
			attribute.String("status.slug", status.Slug),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, status)
	recordResult(span, err)
	return err
}

func (r *TracingStatusRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Status, error) {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.GetByID",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("status.id", id),
		),
	)
	defer span.End()

	status, err := r.next.GetByID(ctx, tenantID, id)
	recordResult(span, err)
	return status, err
}

func (r *TracingStatusRepository) GetBySlug(ctx context.Context, tenantID string, entityType domain.EntityType, slug string) (domain.Status, error) {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.GetBySlug",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("entity.type", string(entityType)),
			attribute.String("status.slug", slug),
		),
	)
	defer span.End()

	status, err := r.next.GetBySlug(ctx, tenantID, entityType, slug)
	recordResult(span, err)
	return status, err
}

func (r *TracingStatusRepository) List(ctx context.Context, tenantID string, entityType domain.EntityType) ([]domain.Status, error) {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.List",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("entity.type", string(entityType)),
		),
	)
	defer span.End()

	statuses, err := r.next.List(ctx, tenantID, entityType)
	recordResult(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(statuses)))
	}
	return statuses, err
}

func (r *TracingStatusRepository) Default(ctx context.Context, tenantID string, entityType domain.EntityType) (domain.Status, error) {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.Default",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("entity.type", string(entityType)),
		),
	)
	defer span.End()

	status, err := r.next.Default(ctx, tenantID, entityType)
	recordResult(span, err)
	return status, err
}

func (r *TracingStatusRepository) Update(ctx context.Context, status domain.Status) error {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.Update",
		trace.WithAttributes(
			attribute.String("tenant.id", status.TenantID),
			attribute.String("status.id", status.ID),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, status)
	recordResult(span, err)
	return err
}

func (r *TracingStatusRepository) SetDefault(ctx context.Context, tenantID string, entityType domain.EntityType, id string) error {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.SetDefault",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("entity.type", string(entityType)),
			attribute.String("status.id", id),
		),
	)
	defer span.End()

	err := r.next.SetDefault(ctx, tenantID, entityType, id)
	recordResult(span, err)
	return err
}

func (r *TracingStatusRepository) Reorder(ctx context.Context, tenantID string, entityType domain.EntityType, ids []string) error {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.Reorder",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("entity.type", string(entityType)),
			attribute.Int("status.count", len(ids)),
		),
	)
	defer span.End()

	err := r.next.Reorder(ctx, tenantID, entityType, ids)
	recordResult(span, err)
	return err
}

func (r *TracingStatusRepository) Delete(ctx context.Context, tenantID, id string) error {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.Delete",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("status.id", id),
		),
	)
	defer span.End()

	err := r.next.Delete(ctx, tenantID, id)
	recordResult(span, err)
	return err
}

func (r *TracingStatusRepository) NextSortOrder(ctx context.Context, tenantID string, entityType domain.EntityType) (int, error) {
	ctx, span := r.tracer.Start(ctx, "StatusRepository.NextSortOrder",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("entity.type", string(entityType)),
		),
	)
	defer span.End()

	next, err := r.next.NextSortOrder(ctx, tenantID, entityType)
	recordResult(span, err)
	return next, err
}

func recordResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
