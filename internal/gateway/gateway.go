package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/reglens/reglens/internal/cache"
	"github.com/reglens/reglens/internal/model"
	"github.com/reglens/reglens/internal/worker"
)

// sleepFunc is the delay between retries (injectable for tests)
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

const retryBaseDelay = 500 * time.Millisecond

// Gateway is the uniform model interface: response caching, rate-limited
// outbound calls, per-call timeouts, and retry with exponential backoff
// on transient failures. Failures never propagate as errors; they come
// back as unsuccessful ModelResponses so one bad document cannot crash a
// batch.
type Gateway struct {
	capability Capability
	cache      cache.Cache
	limiter    *worker.Limiter
	config     model.ModelConfig
}

// New creates a gateway. A nil responseCache disables caching.
func New(capability Capability, responseCache cache.Cache, limiter *worker.Limiter, cfg model.ModelConfig) *Gateway {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Gateway{
		capability: capability,
		cache:      responseCache,
		limiter:    limiter,
		config:     cfg,
	}
}

// Execute resolves one ModelQuery to a ModelResponse. Cache hits return
// immediately with no outbound call.
func (g *Gateway) Execute(ctx context.Context, query model.ModelQuery) model.ModelResponse {
	if g.cache != nil {
		if data, found := g.cache.Get(query.CacheKey); found {
			var resp model.ModelResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				resp.FromCache = true
				return resp
			}
			// Corrupt entry: drop it and fall through to a fresh call
			_ = g.cache.Delete(query.CacheKey)
		}
	}

	resp := g.call(ctx, query)

	if g.cache != nil && resp.Success {
		if data, err := json.Marshal(resp); err == nil {
			_ = g.cache.Set(query.CacheKey, data, 0)
		}
	}

	return resp
}

func (g *Gateway) call(ctx context.Context, query model.ModelQuery) model.ModelResponse {
	attempts := g.config.MaxRetries + 1

	var lastKind model.ErrorKind
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			if err := sleepFunc(ctx, delay); err != nil {
				return failure(model.ErrModelUnavailable)
			}
		}

		if g.limiter != nil {
			if err := g.limiter.Wait(ctx, g.config.Name); err != nil {
				return failure(model.ErrModelUnavailable)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
		start := time.Now()
		text, err := g.capability.Call(callCtx, query.PromptText)
		latency := time.Since(start).Milliseconds()
		cancel()

		if err == nil {
			return model.ModelResponse{
				RawText:   text,
				LatencyMS: latency,
				Success:   true,
			}
		}

		lastKind = classify(err)
		if lastKind == model.ErrModelRequestInvalid {
			// Auth or malformed request: retrying cannot help
			return failure(model.ErrModelRequestInvalid)
		}
		if ctx.Err() != nil {
			return failure(model.ErrModelUnavailable)
		}
	}

	return failure(lastKind)
}

func failure(kind model.ErrorKind) model.ModelResponse {
	return model.ModelResponse{Success: false, ErrorKind: kind}
}

// classify sorts an outbound error into the retry taxonomy. Rate limits,
// 5xx responses, timeouts and connection drops are transient; auth and
// request-shape problems are not.
func classify(err error) model.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.ErrModelUnavailable
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			return model.ErrModelUnavailable
		case apiErr.HTTPStatusCode >= 400:
			return model.ErrModelRequestInvalid
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500 {
			return model.ErrModelUnavailable
		}
		if reqErr.HTTPStatusCode >= 400 {
			return model.ErrModelRequestInvalid
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrModelUnavailable
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof") {
		return model.ErrModelUnavailable
	}

	return model.ErrModelUnavailable
}
