package honeypot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ashwinrao/scam-honeypot/internal/observability/metrics"
	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

const defaultAgentNotes = "Multi-turn engagement completed with scammer"

// CallbackDispatcher decides when to report extracted intelligence to the
// downstream collector and performs the fire-and-forget delivery. Schedule:
// one early report once the session reaches 3 scammer turns, then periodic
// refreshes at every multiple of 5 from turn 10 onward.
type CallbackDispatcher struct {
	url     string
	client  *http.Client
	logger  *logging.Logger
	metrics *metrics.HoneypotMetrics
	nowFn   func() time.Time
}

// NewCallbackDispatcher creates a dispatcher posting to url with the given
// per-attempt timeout.
func NewCallbackDispatcher(url string, timeout time.Duration, logger *logging.Logger, m *metrics.HoneypotMetrics) *CallbackDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CallbackDispatcher{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: m,
		nowFn:   time.Now,
	}
}

// MaybeSend emits the intelligence report if the session's turn count is on
// the schedule. The first-emission flag is set after the attempt whether or
// not delivery succeeded; a failed early callback is not re-tried until the
// periodic schedule kicks in. Returns true when an attempt was made.
func (d *CallbackDispatcher) MaybeSend(ctx context.Context, session *Session) bool {
	if session == nil || !session.ScamDetected {
		return false
	}

	first := session.TurnCount >= 3 && !session.CallbackSent
	repeat := session.TurnCount >= 8 && session.TurnCount%5 == 0
	if !first && !repeat {
		return false
	}

	payload := d.BuildPayload(session)
	if err := d.send(ctx, payload); err != nil {
		d.metrics.ObserveCallback("error")
		d.logger.Error("callback delivery failed",
			"session_id", session.ID,
			"turn_count", session.TurnCount,
			"error", err,
		)
	} else {
		d.metrics.ObserveCallback("ok")
		d.logger.Info("callback delivered",
			"session_id", session.ID,
			"turn_count", session.TurnCount,
		)
	}

	if first {
		session.CallbackSent = true
	}
	return true
}

// BuildPayload snapshots the session, recomputing intelligence from the full
// history.
func (d *CallbackDispatcher) BuildPayload(session *Session) CallbackPayload {
	duration := int(d.nowFn().UTC().Sub(session.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	return CallbackPayload{
		SessionID:                 session.ID,
		ScamDetected:              session.ScamDetected,
		TotalMessagesExchanged:    len(session.History),
		EngagementDurationSeconds: duration,
		ExtractedIntelligence:     ExtractIntelligence(session.Transcript()),
		AgentNotes:                defaultAgentNotes,
	}
}

// send performs one bounded POST. No retries, no queueing: the collector is
// fire-and-forget by contract.
func (d *CallbackDispatcher) send(ctx context.Context, payload CallbackPayload) error {
	if d.url == "" {
		return errors.New("honeypot: callback url not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("honeypot: failed to marshal callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("honeypot: failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("honeypot: callback request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("honeypot: collector returned status %d", resp.StatusCode)
	}
	return nil
}
