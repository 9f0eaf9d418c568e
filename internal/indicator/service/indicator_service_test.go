package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/repository"
	"github.com/Gelzieny/remix-of-economic-insight/internal/policy/engine"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
)

type memReadingRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Reading
	order   []string
	listErr error
}

func newMemReadingRepo() *memReadingRepo {
	return &memReadingRepo{byID: make(map[string]*domain.Reading)}
}

func (m *memReadingRepo) GetByID(ctx context.Context, id string) (*domain.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

func (m *memReadingRepo) ListByUser(ctx context.Context, userID string, f repository.Filter) ([]*domain.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.Reading
	for _, id := range m.order {
		r, ok := m.byID[id]
		if !ok || r.UserID != userID {
			continue
		}
		if !f.Since.IsZero() && r.ReferenceDate.Before(f.Since) {
			continue
		}
		if len(f.Kinds) > 0 && !containsKind(f.Kinds, r.Kind) {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReferenceDate.Before(out[j].ReferenceDate) })
	return out, nil
}

func (m *memReadingRepo) Create(ctx context.Context, r *domain.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *r
	m.byID[r.ID] = &c
	m.order = append(m.order, r.ID)
	return nil
}

func (m *memReadingRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func containsKind(list []domain.Kind, k domain.Kind) bool {
	for _, x := range list {
		if x == k {
			return true
		}
	}
	return false
}

type ownerOnly struct{ err error }

func (o ownerOnly) Allow(ctx context.Context, in engine.Input) (bool, error) {
	if o.err != nil {
		return false, o.err
	}
	return in.OwnerID == in.SubjectID && in.OwnerID != domain.SystemUserID, nil
}

func newTestService(repo *memReadingRepo, now time.Time) *Service {
	s := NewService(repo, ownerOnly{})
	s.now = func() time.Time { return now }
	return s
}

func date(s string) time.Time {
	t, _ := domain.ParseDate(s)
	return t
}

func TestCreate_Validates(t *testing.T) {
	repo := newMemReadingRepo()
	svc := newTestService(repo, date("2025-06-01"))
	ctx := context.Background()

	r, err := svc.Create(ctx, "u1", domain.KindIPCA, 4.2, date("2025-05-01"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == "" || r.UserID != "u1" || r.CreatedAt.IsZero() {
		t.Errorf("reading = %+v", r)
	}
	if _, err := svc.Create(ctx, "u1", "bitcoin", 1, date("2025-05-01")); !errors.Is(err, domain.ErrUnknownKind) {
		t.Errorf("unknown kind err = %v", err)
	}
	if _, err := svc.Create(ctx, "u1", domain.KindIPCA, 1, time.Time{}); !errors.Is(err, domain.ErrMissingDate) {
		t.Errorf("missing date err = %v", err)
	}
	if len(repo.order) != 1 {
		t.Errorf("stored = %d, want 1", len(repo.order))
	}
}

func TestList_OnlyOwnReadings(t *testing.T) {
	repo := newMemReadingRepo()
	svc := newTestService(repo, date("2025-06-01"))
	ctx := context.Background()
	_, _ = svc.Create(ctx, "u1", domain.KindIPCA, 4, date("2025-01-01"))
	_, _ = svc.Create(ctx, "u1", domain.KindSelic, 10, date("2025-01-01"))
	_, _ = svc.Create(ctx, "u2", domain.KindIPCA, 5, date("2025-01-01"))

	list, err := svc.List(ctx, "u1", ListFilter{Kinds: []domain.Kind{domain.KindIPCA}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Value != 4 {
		t.Errorf("List = %+v", list)
	}
}

func TestDelete(t *testing.T) {
	repo := newMemReadingRepo()
	svc := newTestService(repo, date("2025-06-01"))
	ctx := context.Background()
	mine, _ := svc.Create(ctx, "u1", domain.KindIPCA, 4, date("2025-01-01"))
	theirs, _ := svc.Create(ctx, "u2", domain.KindIPCA, 5, date("2025-01-01"))
	system, _ := svc.Create(ctx, domain.SystemUserID, domain.KindIPCA, 5, date("2025-01-01"))

	if err := svc.Delete(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if err := svc.Delete(ctx, "u1", theirs.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("other user err = %v", err)
	}
	if err := svc.Delete(ctx, "u1", system.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("system err = %v", err)
	}
	if err := svc.Delete(ctx, "u1", mine.ID); err != nil {
		t.Fatalf("Delete own: %v", err)
	}
	if r, _ := repo.GetByID(ctx, mine.ID); r != nil {
		t.Error("reading should be gone")
	}
}

func TestDelete_PolicyError(t *testing.T) {
	repo := newMemReadingRepo()
	svc := NewService(repo, ownerOnly{err: errors.New("boom")})
	r, _ := svc.Create(context.Background(), "u1", domain.KindIPCA, 4, date("2025-01-01"))
	if err := svc.Delete(context.Background(), "u1", r.ID); err == nil || errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want wrapped policy error", err)
	}
}

func TestDashboard_MergesReferenceSeries(t *testing.T) {
	repo := newMemReadingRepo()
	svc := newTestService(repo, date("2025-06-15"))
	ctx := context.Background()

	for _, r := range []struct {
		user  string
		kind  domain.Kind
		value float64
		date  string
	}{
		{domain.SystemUserID, domain.KindSelic, 10, "2024-05-01"},
		{domain.SystemUserID, domain.KindSelic, 10.5, "2025-04-01"},
		{domain.SystemUserID, domain.KindSelic, 10.75, "2025-05-01"},
		{"u1", domain.KindSelic, 12, "2025-05-01"},
		{"u1", domain.KindIPCA, 4, "2025-05-01"},
		{domain.SystemUserID, domain.KindDolar, 5, "2023-01-01"},
		{"u2", domain.KindPIB, 2, "2025-05-01"},
	} {
		if _, err := svc.Create(ctx, r.user, r.kind, r.value, date(r.date)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	series, err := svc.Dashboard(ctx, "u1", domain.Period3M)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("series = %d, want 2 (ipca, selic): %+v", len(series), series)
	}
	if series[0].ID != "ipca" || series[1].ID != "selic" {
		t.Errorf("order = %s, %s", series[0].ID, series[1].ID)
	}
	selic := series[1]
	if selic.Value != 12 {
		t.Errorf("selic value = %v, want user reading 12", selic.Value)
	}
	if len(selic.HistoricalData) != 2 {
		t.Errorf("selic window = %v, want 2 points since 2025-03-15", selic.HistoricalData)
	}
	// Annual change uses the 2024-05-01 reading outside the window.
	if math.Abs(selic.AnnualChange-20) > 1e-9 {
		t.Errorf("selic annual = %v, want 20", selic.AnnualChange)
	}
}

func TestDashboard_ListError(t *testing.T) {
	repo := newMemReadingRepo()
	repo.listErr = errors.New("db down")
	svc := newTestService(repo, date("2025-06-15"))
	if _, err := svc.Dashboard(context.Background(), "u1", domain.DefaultPeriod); err == nil {
		t.Fatal("expected error")
	}
}

type chanEmitter chan *telemetry.Event

func (c chanEmitter) Emit(_ context.Context, e *telemetry.Event) error {
	c <- e
	return nil
}

func TestEvents_CreateAndDelete(t *testing.T) {
	repo := newMemReadingRepo()
	events := make(chanEmitter, 2)
	svc := newTestService(repo, date("2025-06-01")).WithEvents(events, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, "u1", domain.KindDolar, 5.1, date("2025-05-01"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, "u1", r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case e := <-events:
			if e.UserID != "u1" {
				t.Errorf("event user = %q", e.UserID)
			}
			seen[e.Type] = true
		case <-time.After(2 * time.Second):
			t.Fatal("event not emitted")
		}
	}
	if !seen[telemetry.EventReadingCreated] || !seen[telemetry.EventReadingDeleted] {
		t.Errorf("events = %v", seen)
	}
}
