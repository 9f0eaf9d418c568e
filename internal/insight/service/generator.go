package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/cache"
	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/llm"
)

var (
	ErrNoContent     = errors.New("No content in AI response")
	ErrInvalidJSON   = errors.New("Invalid JSON from AI")
	ErrRateLimited   = errors.New("too many insight requests, try again in a minute")
	ErrLLMNotEnabled = errors.New("LLM API key is not configured")
)

// Result messages for requests that never reach the model.
const (
	MessageNoIndicators = "No indicators provided"
	MessageNoVisible    = "No visible indicators"
)

const (
	generationTemperature = 0.3
	generalIndicatorID    = "general"
)

// Request is the dashboard's ask for AI insights.
type Request struct {
	Indicators []indicatordomain.Series `json:"indicators"`
	// VisibleIndicators filters Indicators by id when non-nil. An empty, non-nil list hides all.
	VisibleIndicators []string `json:"visibleIndicators"`
	Period            string   `json:"period"`
}

// Result is the generated insights, or an explanatory message when nothing was generated.
type Result struct {
	Insights []domain.AIInsight `json:"insights"`
	Message  string             `json:"message,omitempty"`
}

// Generator produces AI insights for the dashboard.
type Generator struct {
	llm     llm.Client
	cache   cache.Store
	ttl     time.Duration
	limiter *UserLimiter
	logger  *zap.Logger
	now     func() time.Time
}

// NewGenerator returns a Generator. client may be nil, in which case Generate fails with
// ErrLLMNotEnabled for any request that reaches the model. store and limiter are optional.
func NewGenerator(client llm.Client, store cache.Store, ttl time.Duration, limiter *UserLimiter, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{llm: client, cache: store, ttl: ttl, limiter: limiter, logger: logger, now: time.Now}
}

// Generate returns insights for the visible indicators of req. Model results are cached per
// user, period, visible set and indicator count.
func (g *Generator) Generate(ctx context.Context, userID string, req Request) (*Result, error) {
	if len(req.Indicators) == 0 {
		return &Result{Insights: []domain.AIInsight{}, Message: MessageNoIndicators}, nil
	}
	active := activeIndicators(req.Indicators, req.VisibleIndicators)
	if len(active) == 0 {
		return &Result{Insights: []domain.AIInsight{}, Message: MessageNoVisible}, nil
	}

	key := cacheKey(userID, req)
	if cached, ok := g.lookup(ctx, key); ok {
		return cached, nil
	}
	if g.llm == nil {
		return nil, ErrLLMNotEnabled
	}
	if !g.limiter.Allow(userID) {
		return nil, ErrRateLimited
	}

	content, err := g.llm.Complete(ctx, llm.Request{
		System:      domain.SystemPrompt,
		User:        domain.BuildPrompt(active, req.Period),
		Temperature: generationTemperature,
		JSON:        true,
	})
	if errors.Is(err, llm.ErrEmptyResponse) || (err == nil && strings.TrimSpace(content) == "") {
		return nil, ErrNoContent
	}
	if err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}

	insights, err := parseInsights(content, active, g.now())
	if err != nil {
		g.logger.Warn("failed to parse AI response", zap.String("model", g.llm.Name()), zap.Int("content_len", len(content)))
		return nil, err
	}
	g.logger.Info("generated insights", zap.String("user_id", userID), zap.Int("count", len(insights)))

	res := &Result{Insights: insights}
	g.store(ctx, key, res)
	return res, nil
}

func (g *Generator) lookup(ctx context.Context, key string) (*Result, bool) {
	if g.cache == nil {
		return nil, false
	}
	b, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("insight cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(b, &res); err != nil {
		g.logger.Warn("insight cache entry unreadable", zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (g *Generator) store(ctx context.Context, key string, res *Result) {
	if g.cache == nil || g.ttl <= 0 {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, b, g.ttl); err != nil {
		g.logger.Warn("insight cache write failed", zap.Error(err))
	}
}

func activeIndicators(all []indicatordomain.Series, visible []string) []indicatordomain.Series {
	if visible == nil {
		return all
	}
	keep := make(map[string]bool, len(visible))
	for _, id := range visible {
		keep[id] = true
	}
	out := make([]indicatordomain.Series, 0, len(all))
	for _, s := range all {
		if keep[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

func cacheKey(userID string, req Request) string {
	visible := "all"
	if req.VisibleIndicators != nil {
		ids := append([]string(nil), req.VisibleIndicators...)
		sort.Strings(ids)
		visible = strings.Join(ids, ",")
	}
	return fmt.Sprintf("ai-insights:%s:%s:%s:%d", userID, req.Period, visible, len(req.Indicators))
}

type modelInsight struct {
	Message    string   `json:"message"`
	Type       string   `json:"type"`
	Severity   string   `json:"severity"`
	Indicators []string `json:"indicators"`
}

func parseInsights(content string, active []indicatordomain.Series, now time.Time) ([]domain.AIInsight, error) {
	var parsed struct {
		Insights []modelInsight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(content)), &parsed); err != nil {
		return nil, ErrInvalidJSON
	}
	date := now.UTC().Format(indicatordomain.DateLayout)
	stamp := now.UnixMilli()
	out := make([]domain.AIInsight, len(parsed.Insights))
	for i, in := range parsed.Insights {
		typ := domain.Type(in.Type)
		if typ == "" {
			typ = domain.TypeTrend
		}
		sev := domain.Severity(in.Severity)
		if sev == "" {
			sev = domain.SeverityInfo
		}
		indicatorID := generalIndicatorID
		switch {
		case len(in.Indicators) > 0 && in.Indicators[0] != "":
			indicatorID = in.Indicators[0]
		case len(active) > 0:
			indicatorID = active[0].ID
		}
		out[i] = domain.AIInsight{
			ID:          fmt.Sprintf("ai-insight-%d-%d", stamp, i),
			Message:     in.Message,
			Type:        typ,
			Severity:    sev,
			IndicatorID: indicatorID,
			Date:        date,
		}
	}
	return out, nil
}
