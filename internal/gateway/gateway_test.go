package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/reglens/reglens/internal/cache"
	"github.com/reglens/reglens/internal/model"
)

func init() {
	// No real delays between retry attempts in tests
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	}
}

type fakeCapability struct {
	calls     int
	responses []string
	errs      []error
}

func (f *fakeCapability) Call(ctx context.Context, promptText string) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var text string
	if i < len(f.responses) {
		text = f.responses[i]
	}
	return text, err
}

func testConfig() model.ModelConfig {
	return model.ModelConfig{
		Name:       "gpt-4o-mini",
		Seed:       42,
		MaxTokens:  800,
		Timeout:    time.Second,
		MaxRetries: 2,
	}
}

func testQuery() model.ModelQuery {
	cfg := testConfig()
	return model.ModelQuery{
		DocumentID: "doc-1",
		Kind:       model.KindSearch,
		QueryText:  "data protection",
		PromptText: "score this",
		CacheKey:   cache.Key(model.KindSearch, "doc-1", "data protection", cfg),
	}
}

func TestExecute_Success(t *testing.T) {
	cap := &fakeCapability{responses: []string{`{"relevance_score":0.8}`}}
	g := New(cap, nil, nil, testConfig())

	resp := g.Execute(context.Background(), testQuery())

	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.RawText != `{"relevance_score":0.8}` {
		t.Errorf("unexpected raw text %q", resp.RawText)
	}
	if cap.calls != 1 {
		t.Errorf("expected 1 call, got %d", cap.calls)
	}
}

func TestExecute_TransientFailureExhaustsRetries(t *testing.T) {
	transient := &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"}
	cap := &fakeCapability{errs: []error{transient, transient, transient}}
	g := New(cap, nil, nil, testConfig())

	resp := g.Execute(context.Background(), testQuery())

	if resp.Success {
		t.Fatal("expected failure after exhausted retries")
	}
	if resp.ErrorKind != model.ErrModelUnavailable {
		t.Errorf("expected ModelUnavailable, got %s", resp.ErrorKind)
	}
	// 1 initial attempt + 2 retries
	if cap.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", cap.calls)
	}
}

func TestExecute_RecoversOnRetry(t *testing.T) {
	transient := &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
	cap := &fakeCapability{
		errs:      []error{transient, nil},
		responses: []string{"", `{"relevance_score":0.5}`},
	}
	g := New(cap, nil, nil, testConfig())

	resp := g.Execute(context.Background(), testQuery())

	if !resp.Success {
		t.Fatalf("expected recovery on second attempt, got %+v", resp)
	}
	if cap.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", cap.calls)
	}
}

func TestExecute_InvalidRequestNotRetried(t *testing.T) {
	invalid := &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}
	cap := &fakeCapability{errs: []error{invalid, invalid, invalid}}
	g := New(cap, nil, nil, testConfig())

	resp := g.Execute(context.Background(), testQuery())

	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.ErrorKind != model.ErrModelRequestInvalid {
		t.Errorf("expected ModelRequestInvalid, got %s", resp.ErrorKind)
	}
	if cap.calls != 1 {
		t.Errorf("non-retriable failure should stop after 1 attempt, got %d", cap.calls)
	}
}

func TestExecute_CacheHitSkipsOutboundCall(t *testing.T) {
	cap := &fakeCapability{responses: []string{`{"relevance_score":0.9}`}}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	g := New(cap, c, nil, testConfig())

	q := testQuery()

	first := g.Execute(context.Background(), q)
	if !first.Success || first.FromCache {
		t.Fatalf("first execution should miss the cache: %+v", first)
	}

	second := g.Execute(context.Background(), q)
	if !second.Success || !second.FromCache {
		t.Fatalf("second execution should hit the cache: %+v", second)
	}
	if second.RawText != first.RawText {
		t.Errorf("cached text differs: %q vs %q", second.RawText, first.RawText)
	}
	if cap.calls != 1 {
		t.Errorf("cache hit must not call the model, got %d calls", cap.calls)
	}
}

func TestExecute_FailuresNotCached(t *testing.T) {
	transient := &openai.APIError{HTTPStatusCode: 500}
	cap := &fakeCapability{
		errs:      []error{transient, transient, transient, nil},
		responses: []string{"", "", "", `{"relevance_score":0.4}`},
	}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	g := New(cap, c, nil, testConfig())

	q := testQuery()

	if resp := g.Execute(context.Background(), q); resp.Success {
		t.Fatal("expected first execution to fail")
	}

	// The failure must not poison the cache; a later run may succeed
	resp := g.Execute(context.Background(), q)
	if !resp.Success || resp.FromCache {
		t.Fatalf("expected fresh successful call after failure, got %+v", resp)
	}
}

func TestExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cap := &fakeCapability{errs: []error{context.Canceled}}
	g := New(cap, nil, nil, testConfig())

	resp := g.Execute(ctx, testQuery())

	if resp.Success {
		t.Fatal("expected failure under cancelled context")
	}
	if resp.ErrorKind != model.ErrModelUnavailable {
		t.Errorf("expected ModelUnavailable, got %s", resp.ErrorKind)
	}
	if cap.calls > 1 {
		t.Errorf("cancelled context must not be retried, got %d calls", cap.calls)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want model.ErrorKind
	}{
		{"rate limit", &openai.APIError{HTTPStatusCode: 429}, model.ErrModelUnavailable},
		{"server error", &openai.APIError{HTTPStatusCode: 502}, model.ErrModelUnavailable},
		{"auth", &openai.APIError{HTTPStatusCode: 401}, model.ErrModelRequestInvalid},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, model.ErrModelRequestInvalid},
		{"deadline", context.DeadlineExceeded, model.ErrModelUnavailable},
		{"connection reset", errors.New("read tcp: connection reset by peer"), model.ErrModelUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.err); got != tc.want {
				t.Errorf("classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}
