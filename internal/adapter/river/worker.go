package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// StatusChangedWorker processes committed status change jobs from the River
// queue. For now it logs the change; future versions will fan out to
// downstream systems such as analytics or search indexing.
type StatusChangedWorker struct {
	river.WorkerDefaults[StatusChangedArgs]
}

// Work processes a single status change job.
func (w *StatusChangedWorker) Work(ctx context.Context, job *river.Job[StatusChangedArgs]) error {
	slog.InfoContext(ctx, "processing status change",
		"tenant_id", job.Args.TenantID,
		"entity_type", job.Args.EntityType,
		"entity_id", job.Args.EntityID,
		"from_status", job.Args.FromStatus,
		"to_status", job.Args.ToStatus,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// NotificationWorker processes notification jobs. It logs the request; the
// actual template rendering and channel delivery live outside the engine.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationArgs]
}

// Work processes a single notification job.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationArgs]) error {
	slog.InfoContext(ctx, "sending notification",
		"template_id", job.Args.TemplateID,
		"tenant_id", job.Args.TenantID,
		"entity_type", job.Args.EntityType,
		"entity_id", job.Args.EntityID,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
