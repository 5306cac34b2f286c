package app_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/settatam/statusflow/internal/app"
	"github.com/settatam/statusflow/internal/domain"
)

// --- Mocks ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStatusRepo struct {
	statuses map[string]domain.Status
}

func newMockStatusRepo() *mockStatusRepo {
	return &mockStatusRepo{statuses: make(map[string]domain.Status)}
}

func (m *mockStatusRepo) Create(_ context.Context, s domain.Status) error {
	m.statuses[s.ID] = s
	return nil
}

func (m *mockStatusRepo) GetByID(_ context.Context, tenantID, id string) (domain.Status, error) {
	s, ok := m.statuses[id]
	if !ok || s.TenantID != tenantID {
		return domain.Status{}, domain.ErrStatusNotFound
	}
	return s, nil
}

func (m *mockStatusRepo) GetBySlug(_ context.Context, tenantID string, entityType domain.EntityType, slug string) (domain.Status, error) {
	for _, s := range m.statuses {
		if s.TenantID == tenantID && s.EntityType == entityType && s.Slug == slug {
			return s, nil
		}
	}
	return domain.Status{}, domain.ErrStatusNotFound
}

func (m *mockStatusRepo) List(_ context.Context, tenantID string, entityType domain.EntityType) ([]domain.Status, error) {
	var out []domain.Status
	for _, s := range m.statuses {
		if s.TenantID == tenantID && s.EntityType == entityType {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *mockStatusRepo) Default(_ context.Context, tenantID string, entityType domain.EntityType) (domain.Status, error) {
	for _, s := range m.statuses {
		if s.TenantID == tenantID && s.EntityType == entityType && s.IsDefault {
			return s, nil
		}
	}
	return domain.Status{}, domain.ErrStatusNotFound
}

func (m *mockStatusRepo) Update(_ context.Context, s domain.Status) error {
	m.statuses[s.ID] = s
	return nil
}

func (m *mockStatusRepo) SetDefault(_ context.Context, tenantID string, entityType domain.EntityType, id string) error {
	if _, ok := m.statuses[id]; !ok {
		return domain.ErrStatusNotFound
	}
	for key, s := range m.statuses {
		if s.TenantID == tenantID && s.EntityType == entityType {
			s.IsDefault = key == id
			m.statuses[key] = s
		}
	}
	return nil
}

func (m *mockStatusRepo) Reorder(_ context.Context, tenantID string, entityType domain.EntityType, ids []string) error {
	for i, id := range ids {
		s, ok := m.statuses[id]
		if !ok || s.TenantID != tenantID || s.EntityType != entityType {
			return &domain.ValidationError{Field: "ids", Message: fmt.Sprintf("unknown status %q", id)}
		}
		s.SortOrder = i + 1
		m.statuses[id] = s
	}
	return nil
}

func (m *mockStatusRepo) Delete(_ context.Context, tenantID, id string) error {
	s, ok := m.statuses[id]
	if !ok || s.TenantID != tenantID {
		return domain.ErrStatusNotFound
	}
	delete(m.statuses, id)
	return nil
}

func (m *mockStatusRepo) NextSortOrder(_ context.Context, tenantID string, entityType domain.EntityType) (int, error) {
	max := 0
	for _, s := range m.statuses {
		if s.TenantID == tenantID && s.EntityType == entityType && s.SortOrder > max {
			max = s.SortOrder
		}
	}
	return max + 1, nil
}

type mockTransitionRepo struct {
	transitions map[string]domain.Transition
}

func newMockTransitionRepo() *mockTransitionRepo {
	return &mockTransitionRepo{transitions: make(map[string]domain.Transition)}
}

func (m *mockTransitionRepo) Create(_ context.Context, tr domain.Transition) error {
	for _, existing := range m.transitions {
		if existing.FromStatusID == tr.FromStatusID && existing.ToStatusID == tr.ToStatusID {
			return &domain.ValidationError{Field: "to_status_id", Message: "edge already defined"}
		}
	}
	m.transitions[tr.ID] = tr
	return nil
}

func (m *mockTransitionRepo) GetByID(_ context.Context, tenantID, id string) (domain.Transition, error) {
	tr, ok := m.transitions[id]
	if !ok || tr.TenantID != tenantID {
		return domain.Transition{}, domain.ErrTransitionNotFound
	}
	return tr, nil
}

func (m *mockTransitionRepo) ListFrom(_ context.Context, tenantID, fromStatusID string) ([]domain.Transition, error) {
	var out []domain.Transition
	for _, tr := range m.transitions {
		if tr.TenantID == tenantID && tr.FromStatusID == fromStatusID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (m *mockTransitionRepo) List(_ context.Context, tenantID string, entityType domain.EntityType) ([]domain.Transition, error) {
	var out []domain.Transition
	for _, tr := range m.transitions {
		if tr.TenantID == tenantID && tr.EntityType == entityType {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (m *mockTransitionRepo) Exists(_ context.Context, tenantID, fromStatusID, toStatusID string) (bool, error) {
	for _, tr := range m.transitions {
		if tr.TenantID == tenantID && tr.FromStatusID == fromStatusID && tr.ToStatusID == toStatusID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTransitionRepo) SetEnabled(_ context.Context, tenantID, id string, enabled bool) error {
	tr, ok := m.transitions[id]
	if !ok || tr.TenantID != tenantID {
		return domain.ErrTransitionNotFound
	}
	tr.IsEnabled = enabled
	m.transitions[id] = tr
	return nil
}

func (m *mockTransitionRepo) Delete(_ context.Context, tenantID, id string) error {
	tr, ok := m.transitions[id]
	if !ok || tr.TenantID != tenantID {
		return domain.ErrTransitionNotFound
	}
	delete(m.transitions, id)
	return nil
}

type mockAutomationRepo struct {
	automations map[string]domain.Automation
}

func newMockAutomationRepo() *mockAutomationRepo {
	return &mockAutomationRepo{automations: make(map[string]domain.Automation)}
}

func (m *mockAutomationRepo) Create(_ context.Context, a domain.Automation) error {
	m.automations[a.ID] = a
	return nil
}

func (m *mockAutomationRepo) GetByID(_ context.Context, tenantID, id string) (domain.Automation, error) {
	a, ok := m.automations[id]
	if !ok || a.TenantID != tenantID {
		return domain.Automation{}, domain.ErrAutomationNotFound
	}
	return a, nil
}

func (m *mockAutomationRepo) ListForStatus(_ context.Context, tenantID, statusID string) ([]domain.Automation, error) {
	var out []domain.Automation
	for _, a := range m.automations {
		if a.TenantID == tenantID && a.StatusID == statusID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *mockAutomationRepo) ListForTrigger(_ context.Context, tenantID, statusID string, trigger domain.Trigger) ([]domain.Automation, error) {
	var out []domain.Automation
	for _, a := range m.automations {
		if a.TenantID == tenantID && a.StatusID == statusID && a.Trigger == trigger && a.IsEnabled {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *mockAutomationRepo) SetEnabled(_ context.Context, tenantID, id string, enabled bool) error {
	a, ok := m.automations[id]
	if !ok || a.TenantID != tenantID {
		return domain.ErrAutomationNotFound
	}
	a.IsEnabled = enabled
	m.automations[id] = a
	return nil
}

func (m *mockAutomationRepo) Delete(_ context.Context, tenantID, id string) error {
	a, ok := m.automations[id]
	if !ok || a.TenantID != tenantID {
		return domain.ErrAutomationNotFound
	}
	delete(m.automations, id)
	return nil
}

func (m *mockAutomationRepo) NextSortOrder(_ context.Context, tenantID, statusID string, trigger domain.Trigger) (int, error) {
	max := 0
	for _, a := range m.automations {
		if a.TenantID == tenantID && a.StatusID == statusID && a.Trigger == trigger && a.SortOrder > max {
			max = a.SortOrder
		}
	}
	return max + 1, nil
}

// mockEntityStore keeps entities and history in memory and honours the
// compare-and-swap contract.
type mockEntityStore struct {
	entities map[string]domain.Entity
	history  []domain.HistoryRecord
}

func newMockEntityStore() *mockEntityStore {
	return &mockEntityStore{entities: make(map[string]domain.Entity)}
}

func (m *mockEntityStore) put(e domain.Entity) { m.entities[e.ID] = e }

func (m *mockEntityStore) Get(_ context.Context, tenantID, id string) (domain.Statusable, error) {
	e, ok := m.entities[id]
	if !ok || e.TenantID != tenantID {
		return nil, domain.ErrEntityNotFound
	}
	return e, nil
}

func (m *mockEntityStore) SwapStatus(_ context.Context, tenantID, id, fromStatusID, toStatusID string, record domain.HistoryRecord) error {
	e, ok := m.entities[id]
	if !ok || e.TenantID != tenantID {
		return domain.ErrEntityNotFound
	}
	if e.StatusID != fromStatusID {
		return domain.ErrStatusConflict
	}
	e.StatusID = toStatusID
	m.entities[id] = e
	m.history = append([]domain.HistoryRecord{record}, m.history...)
	return nil
}

func (m *mockEntityStore) CountInStatus(_ context.Context, tenantID, statusID string) (int64, error) {
	var count int64
	for _, e := range m.entities {
		if e.TenantID == tenantID && e.StatusID == statusID {
			count++
		}
	}
	return count, nil
}

func (m *mockEntityStore) History(_ context.Context, tenantID, id string) ([]domain.HistoryRecord, error) {
	var out []domain.HistoryRecord
	for _, rec := range m.history {
		if rec.TenantID == tenantID && rec.EntityID == id {
			out = append(out, rec)
		}
	}
	return out, nil
}

// edgeResolver resolves transitions by linear search, standing in for the
// FSM adapter.
type edgeResolver struct{}

func (edgeResolver) Resolve(_ context.Context, currentStatusID, targetStatusID string, edges []domain.Transition) (domain.Transition, error) {
	for _, edge := range edges {
		if edge.FromStatusID == currentStatusID && edge.ToStatusID == targetStatusID {
			return edge, nil
		}
	}
	return domain.Transition{}, domain.ErrTransitionNotFound
}

type sentNotification struct {
	templateID string
	entityID   string
}

type mockNotifier struct {
	sent []sentNotification
	err  error
}

func (m *mockNotifier) Send(_ context.Context, templateID string, entity domain.Statusable, _ map[string]any) error {
	m.sent = append(m.sent, sentNotification{templateID: templateID, entityID: entity.EntityID()})
	return m.err
}

type webhookCall struct {
	url     string
	payload any
}

type mockWebhookCaller struct {
	calls []webhookCall
	err   error
}

func (m *mockWebhookCaller) Call(_ context.Context, url string, payload any) error {
	m.calls = append(m.calls, webhookCall{url: url, payload: payload})
	return m.err
}

type mockCustomExecutor struct {
	actions []string
	err     error
}

func (m *mockCustomExecutor) Execute(_ context.Context, action string, _ domain.Statusable, _ map[string]any) error {
	m.actions = append(m.actions, action)
	return m.err
}

type mockPublisher struct {
	events []domain.ChangeEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event domain.ChangeEvent) error {
	m.events = append(m.events, event)
	return m.err
}

// --- Fixtures ---

// orderWorld wires a workflow service over mocks with a minimal order
// vocabulary: pending (default) -> confirmed -> shipped (final), plus
// pending -> cancelled (final).
type orderWorld struct {
	statuses    *mockStatusRepo
	transitions *mockTransitionRepo
	automations *mockAutomationRepo
	store       *mockEntityStore
	notifier    *mockNotifier
	webhooks    *mockWebhookCaller
	custom      *mockCustomExecutor
	publisher   *mockPublisher
	workflow    *app.WorkflowService

	pending   domain.Status
	confirmed domain.Status
	shipped   domain.Status
	cancelled domain.Status
}

func newOrderWorld() *orderWorld {
	w := &orderWorld{
		statuses:    newMockStatusRepo(),
		transitions: newMockTransitionRepo(),
		automations: newMockAutomationRepo(),
		store:       newMockEntityStore(),
		notifier:    &mockNotifier{},
		webhooks:    &mockWebhookCaller{},
		custom:      &mockCustomExecutor{},
		publisher:   &mockPublisher{},
	}

	mk := func(id, slug string, isDefault, isFinal bool) domain.Status {
		s := domain.NewStatus(id, "t-1", domain.EntityOrder, slug, slug)
		s.IsDefault = isDefault
		s.IsFinal = isFinal
		w.statuses.statuses[id] = s
		return s
	}
	w.pending = mk("st-pending", "pending", true, false)
	w.confirmed = mk("st-confirmed", "confirmed", false, false)
	w.shipped = mk("st-shipped", "shipped", false, true)
	w.cancelled = mk("st-cancelled", "cancelled", false, true)

	edge := func(id string, from, to domain.Status) domain.Transition {
		tr := domain.NewTransition(id, from, to)
		w.transitions.transitions[id] = tr
		return tr
	}
	edge("tr-confirm", w.pending, w.confirmed)
	edge("tr-ship", w.confirmed, w.shipped)
	edge("tr-cancel", w.pending, w.cancelled)

	stores := domain.NewStoreRegistry()
	stores.Register(domain.EntityOrder, w.store)

	dispatcher := app.NewDispatcher(w.automations, w.notifier, w.webhooks, w.custom, discardLogger(), 0)
	w.workflow = app.NewWorkflowService(w.statuses, w.transitions, stores, edgeResolver{}, dispatcher, w.publisher, discardLogger())
	return w
}

func (w *orderWorld) addOrder(id, statusID string, data map[string]any) domain.Entity {
	e := domain.NewEntity(id, "t-1", domain.EntityOrder, statusID, data)
	w.store.put(e)
	return e
}
