package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/policy/engine"
)

type memInsightRepo struct {
	mu   sync.Mutex
	list []*domain.GeneratedInsight
}

func (m *memInsightRepo) GetByID(_ context.Context, id string) (*domain.GeneratedInsight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.list {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, nil
}

func (m *memInsightRepo) ListByUser(_ context.Context, userID string, limit int) ([]*domain.GeneratedInsight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.GeneratedInsight
	for _, g := range m.list {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReferenceDate.After(out[j].ReferenceDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memInsightRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, g := range m.list {
		if g.ID == id {
			m.list = append(m.list[:i], m.list[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memInsightRepo) Replace(_ context.Context, g *domain.GeneratedInsight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.list[:0]
	for _, x := range m.list {
		if x.UserID == g.UserID && x.Indicator == g.Indicator && x.ReferenceDate.Equal(g.ReferenceDate) {
			continue
		}
		kept = append(kept, x)
	}
	m.list = append(kept, g)
	return nil
}

type fixedSeries struct {
	series []indicatordomain.Series
	err    error
}

func (f fixedSeries) Dashboard(context.Context, string, indicatordomain.Period) ([]indicatordomain.Series, error) {
	return f.series, f.err
}

type ownerPolicy struct{}

func (ownerPolicy) Allow(_ context.Context, in engine.Input) (bool, error) {
	return in.SubjectID != "" && in.SubjectID == in.OwnerID, nil
}

func series(id string, monthly float64, lastDate string) indicatordomain.Series {
	m := indicatordomain.MetaFor(indicatordomain.Kind(id))
	return indicatordomain.Series{
		ID: id, Name: m.Name, ShortName: m.ShortName, Unit: m.Unit, Value: 10, MonthlyChange: monthly,
		HistoricalData: []indicatordomain.Point{{Date: lastDate, Value: 10}},
	}
}

func TestRefresh_Rules(t *testing.T) {
	repo := &memInsightRepo{}
	src := fixedSeries{series: []indicatordomain.Series{
		series("ipca", 6, "2025-02-01"),
		series("selic", 2, "2025-02-01"),
		series("dolar", -3, "2025-02-01"),
		series("pib", 0.5, "2025-01-01"),
		series("igpm", -5, "2025-02-01"),
	}}
	svc := NewService(repo, src, ownerPolicy{}, nil)

	out, err := svc.Refresh(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("insights = %d, want 5", len(out))
	}
	got := map[string]*domain.GeneratedInsight{}
	for _, g := range out {
		got[g.Indicator] = g
	}
	checks := []struct {
		kind  string
		typ   domain.Type
		sev   domain.Severity
		title string
	}{
		{"ipca", domain.TypeAlert, domain.SeverityWarning, "IPCA: variação expressiva"},
		{"igpm", domain.TypeAlert, domain.SeverityWarning, "IGP-M: variação expressiva"},
		{"selic", domain.TypeTrend, domain.SeveritySuccess, "Selic em alta"},
		{"dolar", domain.TypeTrend, domain.SeverityInfo, "Dólar em queda"},
		{"pib", domain.TypeTrend, domain.SeverityInfo, "PIB estável"},
	}
	for _, c := range checks {
		g := got[c.kind]
		if g == nil {
			t.Errorf("%s: missing", c.kind)
			continue
		}
		if g.Type != c.typ || g.Severity != c.sev || g.Title != c.title {
			t.Errorf("%s: got %s/%s %q, want %s/%s %q", c.kind, g.Type, g.Severity, g.Title, c.typ, c.sev, c.title)
		}
		if g.Description == "" || g.UserID != "u1" {
			t.Errorf("%s: %+v", c.kind, g)
		}
	}
	if got["pib"].ReferenceDate.Format("2006-01-02") != "2025-01-01" {
		t.Errorf("pib reference date = %v", got["pib"].ReferenceDate)
	}
}

func TestRefresh_ReplacesSameDay(t *testing.T) {
	repo := &memInsightRepo{}
	svc := NewService(repo, fixedSeries{series: []indicatordomain.Series{series("ipca", 2, "2025-02-01")}}, ownerPolicy{}, nil)
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, "u1", []indicatordomain.Kind{indicatordomain.KindIPCA}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := svc.Refresh(ctx, "u1", []indicatordomain.Kind{indicatordomain.KindIPCA}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	list, _ := svc.List(ctx, "u1")
	if len(list) != 1 {
		t.Errorf("stored = %d, want 1 after refreshing twice", len(list))
	}

	out, err := svc.Refresh(ctx, "u1", []indicatordomain.Kind{indicatordomain.KindSelic})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("kind without data produced %d insights", len(out))
	}
}

func TestRefresh_SeriesError(t *testing.T) {
	svc := NewService(&memInsightRepo{}, fixedSeries{err: errors.New("db")}, ownerPolicy{}, nil)
	if _, err := svc.Refresh(context.Background(), "u1", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestListAndDelete(t *testing.T) {
	repo := &memInsightRepo{}
	svc := NewService(repo, fixedSeries{}, ownerPolicy{}, nil)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		repo.list = append(repo.list, &domain.GeneratedInsight{ID: string(rune('a' + i)), UserID: "u1"})
	}
	repo.list = append(repo.list, &domain.GeneratedInsight{ID: "other", UserID: "u2"})

	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != ListLimit {
		t.Errorf("List = %d, want %d", len(list), ListLimit)
	}

	if err := svc.Delete(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if err := svc.Delete(ctx, "u1", "other"); !errors.Is(err, ErrForbidden) {
		t.Errorf("other user err = %v", err)
	}
	if err := svc.Delete(ctx, "u1", "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if g, _ := repo.GetByID(ctx, "a"); g != nil {
		t.Error("insight should be deleted")
	}
}
