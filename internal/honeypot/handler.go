package honeypot

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashwinrao/scam-honeypot/internal/observability/metrics"
	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

// Handler wires HTTP requests to the conversation engine.
type Handler struct {
	engine  *Engine
	gateway *ModelGateway
	logger  *logging.Logger
	metrics *metrics.HoneypotMetrics
	version string
}

// NewHandler creates a honeypot HTTP handler.
func NewHandler(engine *Engine, gateway *ModelGateway, logger *logging.Logger, m *metrics.HoneypotMetrics, version string) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if version == "" {
		version = "dev"
	}
	return &Handler{
		engine:  engine,
		gateway: gateway,
		logger:  logger,
		metrics: m,
		version: version,
	}
}

// flexTimestamp accepts the caller's integer epoch-milliseconds or an
// ISO-8601 string; anything else normalizes to "now" downstream by leaving
// the time zero.
type flexTimestamp struct {
	time.Time
}

func (t *flexTimestamp) UnmarshalJSON(data []byte) error {
	var millis int64
	if err := json.Unmarshal(data, &millis); err == nil {
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

type inboundMessage struct {
	Sender    string        `json:"sender"`
	Text      string        `json:"text"`
	Timestamp flexTimestamp `json:"timestamp"`
}

type honeypotRequest struct {
	SessionID           string           `json:"sessionId"`
	Message             inboundMessage   `json:"message"`
	ConversationHistory []inboundMessage `json:"conversationHistory"`
}

type honeypotResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Honeypot handles POST /honeypot, the main message-turn endpoint.
func (h *Handler) Honeypot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req honeypotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.ObserveInbound("bad_request")
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg := Message{
		Sender:    req.Message.Sender,
		Text:      req.Message.Text,
		Timestamp: req.Message.Timestamp.Time,
	}

	result, err := h.engine.ProcessTurn(r.Context(), req.SessionID, msg)
	if err != nil {
		if errors.Is(err, ErrMissingSessionID) || errors.Is(err, ErrMissingMessage) {
			h.metrics.ObserveInbound("bad_request")
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.metrics.ObserveInbound("error")
		h.logger.Error("failed to process turn", "session_id", req.SessionID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	h.metrics.ObserveInbound("ok")
	h.metrics.ObserveTurnLatency(time.Since(start).Seconds())
	h.writeJSON(w, http.StatusOK, honeypotResponse{
		Status: "success",
		Reply:  result.Reply,
	})
}

// GetSession handles GET /session/{sessionID}, the debug view of a session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.engine.Store().Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			h.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

type sessionSummary struct {
	ID           string `json:"id"`
	TurnCount    int    `json:"turnCount"`
	ScamDetected bool   `json:"scamDetected"`
	CallbackSent bool   `json:"callbackSent"`
	StartedAt    string `json:"startedAt"`
}

// ListSessions handles GET /admin/sessions, an operations view of all live
// sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := h.engine.Store().IDs(r.Context())
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	summaries := make([]sessionSummary, 0, len(ids))
	for _, id := range ids {
		session, err := h.engine.Store().Get(r.Context(), id)
		if err != nil {
			continue
		}
		summaries = append(summaries, sessionSummary{
			ID:           session.ID,
			TurnCount:    session.TurnCount,
			ScamDetected: session.ScamDetected,
			CallbackSent: session.CallbackSent,
			StartedAt:    session.StartedAt.Format(time.RFC3339),
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(summaries),
		"sessions": summaries,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.Store().Count(r.Context())
	status := "ok"
	if err != nil {
		status = "degraded"
		h.logger.Warn("session store unreachable during health check", "error", err)
	}
	credentials := 0
	if h.gateway != nil {
		credentials = h.gateway.CredentialCount()
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":               status,
		"activeSessions":       count,
		"availableCredentials": credentials,
	})
}

// ServiceInfo handles GET /, the service identity card.
func (h *Handler) ServiceInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"service": "Scam Honeypot API",
		"status":  "active",
		"version": h.version,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{
		Status:  "error",
		Message: message,
	})
}
