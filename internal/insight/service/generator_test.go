package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gelzieny/remix-of-economic-insight/internal/cache"
	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/llm"
)

type fakeLLM struct {
	mu      sync.Mutex
	content string
	err     error
	calls   int
	last    llm.Request
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	return f.content, f.err
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis down")
}

func sampleSeries() []indicatordomain.Series {
	return []indicatordomain.Series{
		{ID: "ipca", Name: "Inflação (IPCA)", ShortName: "IPCA", Value: 4.5, Unit: "% a.a.",
			HistoricalData: []indicatordomain.Point{{Date: "2025-01-01", Value: 4.2}, {Date: "2025-02-01", Value: 4.5}}},
		{ID: "selic", Name: "Taxa Selic", ShortName: "Selic", Value: 10.5, Unit: "% a.a."},
	}
}

const modelAnswer = `{"insights":[
	{"message":"Inflação acelerou","type":"alert","severity":"warning","indicators":["ipca","selic"]},
	{"message":"Sem indicadores"}
]}`

func newTestGenerator(client llm.Client, store cache.Store, limiter *UserLimiter) *Generator {
	g := NewGenerator(client, store, 2*time.Minute, limiter, nil)
	g.now = func() time.Time { return time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) }
	return g
}

func TestGenerate_EmptyInputs(t *testing.T) {
	f := &fakeLLM{content: modelAnswer}
	g := newTestGenerator(f, nil, nil)
	ctx := context.Background()

	res, err := g.Generate(ctx, "u1", Request{Period: "12m"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Message != MessageNoIndicators || res.Insights == nil || len(res.Insights) != 0 {
		t.Errorf("no indicators result = %+v", res)
	}

	res, err = g.Generate(ctx, "u1", Request{Indicators: sampleSeries(), VisibleIndicators: []string{}, Period: "12m"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Message != MessageNoVisible {
		t.Errorf("no visible result = %+v", res)
	}
	if f.calls != 0 {
		t.Errorf("model called %d times, want 0", f.calls)
	}
}

func TestGenerate_MapsModelOutput(t *testing.T) {
	f := &fakeLLM{content: modelAnswer}
	g := newTestGenerator(f, nil, nil)

	res, err := g.Generate(context.Background(), "u1", Request{
		Indicators:        sampleSeries(),
		VisibleIndicators: []string{"selic"},
		Period:            "6m",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Insights) != 2 {
		t.Fatalf("insights = %d, want 2", len(res.Insights))
	}
	first, second := res.Insights[0], res.Insights[1]
	if first.ID != "ai-insight-1741618800000-0" || second.ID != "ai-insight-1741618800000-1" {
		t.Errorf("ids = %q, %q", first.ID, second.ID)
	}
	if first.Type != domain.TypeAlert || first.Severity != domain.SeverityWarning || first.IndicatorID != "ipca" {
		t.Errorf("first = %+v", first)
	}
	if second.Type != domain.TypeTrend || second.Severity != domain.SeverityInfo || second.IndicatorID != "selic" {
		t.Errorf("second defaults = %+v", second)
	}
	if first.Date != "2025-03-10" {
		t.Errorf("date = %q", first.Date)
	}

	if f.last.Temperature != 0.3 || !f.last.JSON || f.last.System != domain.SystemPrompt {
		t.Errorf("request = %+v", f.last)
	}
	if strings.Contains(f.last.User, "**IPCA") || !strings.Contains(f.last.User, "**Selic (Taxa Selic)**") {
		t.Errorf("prompt should only include visible indicators:\n%s", f.last.User)
	}
	if !strings.Contains(f.last.User, "no período de 6m") {
		t.Error("prompt should carry the period")
	}
}

func TestGenerate_GeneralFallback(t *testing.T) {
	items, err := parseInsights(`{"insights":[{"message":"x"}]}`, nil, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("parseInsights: %v", err)
	}
	if items[0].IndicatorID != "general" {
		t.Errorf("IndicatorID = %q, want general", items[0].IndicatorID)
	}
	items, err = parseInsights(`{}`, nil, time.Unix(0, 0))
	if err != nil || len(items) != 0 {
		t.Errorf("missing insights key = %v, %v", items, err)
	}
}

func TestGenerate_ModelErrors(t *testing.T) {
	ctx := context.Background()
	req := Request{Indicators: sampleSeries(), Period: "12m"}

	g := newTestGenerator(&fakeLLM{err: llm.ErrEmptyResponse}, nil, nil)
	if _, err := g.Generate(ctx, "u1", req); !errors.Is(err, ErrNoContent) {
		t.Errorf("empty err = %v", err)
	}
	g = newTestGenerator(&fakeLLM{content: "   "}, nil, nil)
	if _, err := g.Generate(ctx, "u1", req); !errors.Is(err, ErrNoContent) {
		t.Errorf("blank err = %v", err)
	}
	g = newTestGenerator(&fakeLLM{content: "not json"}, nil, nil)
	if _, err := g.Generate(ctx, "u1", req); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("invalid err = %v", err)
	}
	g = newTestGenerator(&fakeLLM{err: errors.New("502")}, nil, nil)
	if _, err := g.Generate(ctx, "u1", req); err == nil || errors.Is(err, ErrNoContent) {
		t.Errorf("gateway err = %v", err)
	}
	g = newTestGenerator(nil, nil, nil)
	if _, err := g.Generate(ctx, "u1", req); !errors.Is(err, ErrLLMNotEnabled) {
		t.Errorf("nil client err = %v", err)
	}
}

func TestGenerate_Cache(t *testing.T) {
	f := &fakeLLM{content: modelAnswer}
	store := cache.NewMemoryStore()
	g := newTestGenerator(f, store, nil)
	ctx := context.Background()
	req := Request{Indicators: sampleSeries(), VisibleIndicators: []string{"selic", "ipca"}, Period: "12m"}

	first, err := g.Generate(ctx, "u1", req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Same visible set in another order hits the same entry.
	req.VisibleIndicators = []string{"ipca", "selic"}
	second, err := g.Generate(ctx, "u1", req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("model calls = %d, want 1", f.calls)
	}
	if second.Insights[0].ID != first.Insights[0].ID {
		t.Error("cached result should be returned as stored")
	}

	if _, err := g.Generate(ctx, "u2", req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.calls != 2 {
		t.Errorf("another user must not share the cache, calls = %d", f.calls)
	}
}

func TestGenerate_CacheFailureIsNotFatal(t *testing.T) {
	f := &fakeLLM{content: modelAnswer}
	g := newTestGenerator(f, failingStore{}, nil)
	res, err := g.Generate(context.Background(), "u1", Request{Indicators: sampleSeries(), Period: "12m"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Insights) != 2 {
		t.Errorf("insights = %d", len(res.Insights))
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	f := &fakeLLM{content: modelAnswer}
	g := newTestGenerator(f, nil, NewUserLimiter(1))
	ctx := context.Background()
	req := Request{Indicators: sampleSeries(), Period: "12m"}
	if _, err := g.Generate(ctx, "u1", req); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if _, err := g.Generate(ctx, "u1", req); !errors.Is(err, ErrRateLimited) {
		t.Errorf("second Generate err = %v, want ErrRateLimited", err)
	}
	if _, err := g.Generate(ctx, "u2", req); err != nil {
		t.Errorf("other user should not be limited: %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	req := Request{Indicators: sampleSeries(), Period: "12m"}
	if got := cacheKey("u1", req); got != "ai-insights:u1:12m:all:2" {
		t.Errorf("cacheKey = %q", got)
	}
	req.VisibleIndicators = []string{"selic", "ipca"}
	if got := cacheKey("u1", req); got != "ai-insights:u1:12m:ipca,selic:2" {
		t.Errorf("cacheKey = %q", got)
	}
	if req.VisibleIndicators[0] != "selic" {
		t.Error("cacheKey must not sort the caller's slice")
	}
}

func TestUserLimiter_Nil(t *testing.T) {
	var l *UserLimiter
	if !l.Allow("u1") {
		t.Error("nil limiter should allow")
	}
	if NewUserLimiter(0) != nil {
		t.Error("NewUserLimiter(0) should be nil")
	}
}
