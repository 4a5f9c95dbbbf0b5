package honeypot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ashwinrao/scam-honeypot/internal/observability/metrics"
	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

// Sentinel errors the provider clients translate their failures into so the
// gateway can pick the right recovery without knowing the provider.
var (
	// ErrQuotaExhausted marks provider rate/usage-limit rejections. The
	// gateway rotates to the next credential and retries.
	ErrQuotaExhausted = errors.New("honeypot: model quota exhausted")
	// ErrContentBlocked marks provider content-safety rejections. Never
	// retried; callers fall back to canned replies.
	ErrContentBlocked = errors.New("honeypot: model blocked content")
	// ErrNoCredentials means the gateway was built without any API keys.
	ErrNoCredentials = errors.New("honeypot: no model credentials configured")
)

// LLMRequest is a single-shot completion request. Conversation context is
// embedded in the prompt text; the system field carries the persona.
type LLMRequest struct {
	System      string
	Prompt      string
	MaxTokens   int32
	Temperature float32
}

// LLMResponse carries the raw model output before any post-processing.
type LLMResponse struct {
	Text string
}

// LLMClient abstracts one credential's connection to the completion service.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// RotationPolicy decides which credential serves the next call. The index is
// process-wide: a quota failure on one session's call moves every subsequent
// call to the next credential.
type RotationPolicy interface {
	Current() int
	Advance() int
}

// RoundRobinRotation cycles through credential indices under a mutex.
type RoundRobinRotation struct {
	mu    sync.Mutex
	index int
	size  int
}

// NewRoundRobinRotation creates a rotation over size credentials.
func NewRoundRobinRotation(size int) *RoundRobinRotation {
	if size < 1 {
		size = 1
	}
	return &RoundRobinRotation{size: size}
}

func (r *RoundRobinRotation) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Advance moves to the next credential and returns the new index.
func (r *RoundRobinRotation) Advance() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = (r.index + 1) % r.size
	return r.index
}

// ModelGateway wraps the completion service: per-call timeout, quota-driven
// credential rotation, and bounded retry.
type ModelGateway struct {
	clients  []LLMClient
	rotation RotationPolicy
	timeout  time.Duration
	logger   *logging.Logger
	metrics  *metrics.HoneypotMetrics
}

// NewModelGateway creates a gateway over one client per credential. A nil
// rotation gets a round-robin policy sized to the client list.
func NewModelGateway(clients []LLMClient, rotation RotationPolicy, timeout time.Duration, logger *logging.Logger, m *metrics.HoneypotMetrics) *ModelGateway {
	if rotation == nil {
		rotation = NewRoundRobinRotation(len(clients))
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ModelGateway{
		clients:  clients,
		rotation: rotation,
		timeout:  timeout,
		logger:   logger,
		metrics:  m,
	}
}

// CredentialCount reports how many credentials the gateway can rotate over.
func (g *ModelGateway) CredentialCount() int {
	return len(g.clients)
}

// Complete issues the request, rotating credentials on quota errors. At most
// len(clients)+1 attempts are made; content-safety blocks and non-quota
// errors abort immediately.
func (g *ModelGateway) Complete(ctx context.Context, req LLMRequest) (string, error) {
	if len(g.clients) == 0 {
		return "", ErrNoCredentials
	}

	maxAttempts := len(g.clients) + 1
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		idx := g.rotation.Current() % len(g.clients)
		client := g.clients[idx]

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := client.Complete(callCtx, req)
		cancel()
		if err == nil {
			return resp.Text, nil
		}
		lastErr = err

		if errors.Is(err, ErrContentBlocked) {
			g.logger.Warn("model blocked content, not retrying", "credential_index", idx)
			return "", err
		}
		if errors.Is(err, ErrQuotaExhausted) {
			next := g.rotation.Advance()
			g.metrics.ObserveKeyRotation()
			g.logger.Warn("model quota exhausted, rotating credential",
				"credential_index", idx,
				"next_index", next,
				"attempt", attempt+1,
			)
			continue
		}

		g.logger.Error("model call failed", "credential_index", idx, "error", err)
		return "", err
	}

	return "", fmt.Errorf("honeypot: all credentials exhausted: %w", lastErr)
}
