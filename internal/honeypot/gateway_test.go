package honeypot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// stubLLM is a scriptable LLMClient used across the package tests.
type stubLLM struct {
	text  string
	err   error
	calls int
}

func (s *stubLLM) Complete(_ context.Context, _ LLMRequest) (LLMResponse, error) {
	s.calls++
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	return LLMResponse{Text: s.text}, nil
}

func newTestGateway(clients ...LLMClient) *ModelGateway {
	return NewModelGateway(clients, nil, time.Second, nil, nil)
}

func TestGateway_NoCredentials(t *testing.T) {
	gw := newTestGateway()

	_, err := gw.Complete(context.Background(), LLMRequest{Prompt: "hi"})
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestGateway_Success(t *testing.T) {
	client := &stubLLM{text: "hello?"}
	gw := newTestGateway(client)

	got, err := gw.Complete(context.Background(), LLMRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "hello?" {
		t.Fatalf("unexpected text: %q", got)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 call, got %d", client.calls)
	}
}

func TestGateway_RotatesOnQuotaError(t *testing.T) {
	exhausted := &stubLLM{err: fmt.Errorf("%w: 429", ErrQuotaExhausted)}
	healthy := &stubLLM{text: "from second key?"}
	rotation := NewRoundRobinRotation(2)
	gw := NewModelGateway([]LLMClient{exhausted, healthy}, rotation, time.Second, nil, nil)

	got, err := gw.Complete(context.Background(), LLMRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "from second key?" {
		t.Fatalf("expected reply from rotated credential, got %q", got)
	}
	if exhausted.calls != 1 || healthy.calls != 1 {
		t.Fatalf("unexpected call distribution: %d/%d", exhausted.calls, healthy.calls)
	}
	// Rotation is process-wide: the next call starts on the healthy key.
	if rotation.Current() != 1 {
		t.Fatalf("expected rotation to rest on index 1, got %d", rotation.Current())
	}
}

func TestGateway_AllCredentialsExhausted(t *testing.T) {
	a := &stubLLM{err: fmt.Errorf("%w: 429", ErrQuotaExhausted)}
	b := &stubLLM{err: fmt.Errorf("%w: 429", ErrQuotaExhausted)}
	gw := newTestGateway(a, b)

	_, err := gw.Complete(context.Background(), LLMRequest{Prompt: "hi"})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected wrapped ErrQuotaExhausted, got %v", err)
	}
	// len(clients)+1 attempts total.
	if a.calls+b.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", a.calls+b.calls)
	}
}

func TestGateway_ContentBlockedNotRetried(t *testing.T) {
	blocked := &stubLLM{err: fmt.Errorf("%w: safety", ErrContentBlocked)}
	spare := &stubLLM{text: "never used"}
	gw := newTestGateway(blocked, spare)

	_, err := gw.Complete(context.Background(), LLMRequest{Prompt: "hi"})
	if !errors.Is(err, ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
	if blocked.calls != 1 || spare.calls != 0 {
		t.Fatalf("content block must not rotate: %d/%d", blocked.calls, spare.calls)
	}
}

func TestGateway_NonQuotaErrorAborts(t *testing.T) {
	broken := &stubLLM{err: errors.New("connection reset")}
	spare := &stubLLM{text: "never used"}
	gw := newTestGateway(broken, spare)

	_, err := gw.Complete(context.Background(), LLMRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if broken.calls != 1 || spare.calls != 0 {
		t.Fatalf("non-quota errors must abort immediately: %d/%d", broken.calls, spare.calls)
	}
}

func TestRoundRobinRotation_Wraps(t *testing.T) {
	r := NewRoundRobinRotation(3)
	if r.Current() != 0 {
		t.Fatalf("expected initial index 0, got %d", r.Current())
	}
	r.Advance()
	r.Advance()
	if got := r.Advance(); got != 0 {
		t.Fatalf("expected wrap to 0, got %d", got)
	}
}
