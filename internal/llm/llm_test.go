package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain JSON unchanged", `{"insights":[]}`, `{"insights":[]}`},
		{"strips json fenced block", "```json\n{\"insights\":[]}\n```", `{"insights":[]}`},
		{"strips plain fenced block", "```\n{\"insights\":[]}\n```", `{"insights":[]}`},
		{"drops surrounding prose", "Aqui está:\n{\"insights\":[]}\nObrigado", `{"insights":[]}`},
		{"no object", "sem json", "sem json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Config{Provider: ProviderGateway}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing key err = %v, want ErrNotConfigured", err)
	}
	if _, err := New(Config{Provider: "mystery", APIKey: "k"}); err == nil {
		t.Error("unknown provider should fail")
	}
	c, err := New(Config{Provider: ProviderOpenAI, APIKey: "k"})
	if err != nil {
		t.Fatalf("New openai: %v", err)
	}
	if c.Name() != "gpt-4o-mini" {
		t.Errorf("openai default model = %q", c.Name())
	}
	c, err = New(Config{Provider: ProviderAnthropic, APIKey: "k", Model: "google/gemini-3-flash-preview"})
	if err != nil {
		t.Fatalf("New anthropic: %v", err)
	}
	if c.Name() != string(defaultAnthropicModel) {
		t.Errorf("anthropic should ignore gateway model names, got %q", c.Name())
	}
	c, err = New(Config{Provider: ProviderGateway, APIKey: "k", BaseURL: "http://localhost:1/v1", Model: "google/gemini-3-flash-preview"})
	if err != nil {
		t.Fatalf("New gateway: %v", err)
	}
	if c.Name() != "google/gemini-3-flash-preview" {
		t.Errorf("gateway model = %q", c.Name())
	}
}

type stubClient struct {
	out string
	err error
}

func (s stubClient) Name() string { return "stub" }

func (s stubClient) Complete(context.Context, Request) (string, error) { return s.out, s.err }

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := Instrument(stubClient{out: "{}"}, m)
	if _, err := ok.Complete(context.Background(), Request{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	empty := Instrument(stubClient{err: ErrEmptyResponse}, m)
	_, _ = empty.Complete(context.Background(), Request{})
	failing := Instrument(stubClient{err: errors.New("down")}, m)
	_, _ = failing.Complete(context.Background(), Request{})

	for outcome, want := range map[string]float64{"ok": 1, "empty": 1, "error": 1} {
		if got := testutil.ToFloat64(m.requests.WithLabelValues("stub", outcome)); got != want {
			t.Errorf("requests{%s} = %v, want %v", outcome, got, want)
		}
	}
	if Instrument(nil, m) != nil {
		t.Error("Instrument(nil) should stay nil")
	}
}
