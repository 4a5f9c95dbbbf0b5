package honeypot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, model LLMClient) *Handler {
	t.Helper()
	gw := newTestGateway(model)
	classifier := NewScamClassifier(gw, nil, nil)
	responder := NewResponder(gw, NewPersonaSelector(nil), nil, nil)
	dispatcher := NewCallbackDispatcher("", time.Second, nil, nil)
	engine := NewEngine(NewMemorySessionStore(0, nil), classifier, responder, dispatcher, nil, nil)
	return NewHandler(engine, gw, nil, nil, "1.0.0")
}

func TestFlexTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"epoch millis", `1735689600000`, time.UnixMilli(1735689600000).UTC()},
		{"rfc3339", `"2025-01-01T00:00:00Z"`, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"rfc3339 with offset", `"2025-01-01T05:30:00+05:30"`, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"bare iso without zone", `"2025-01-01T00:00:00"`, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"garbage normalizes to zero", `"yesterday"`, time.Time{}},
		{"wrong type normalizes to zero", `{"x":1}`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts flexTimestamp
			require.NoError(t, ts.UnmarshalJSON([]byte(tt.raw)))
			assert.True(t, ts.Time.Equal(tt.want), "got %s want %s", ts.Time, tt.want)
		})
	}
}

func TestHoneypotEndpoint_Success(t *testing.T) {
	h := newTestHandler(t, &stubLLM{text: "Arre beta, who is this? What is your phone number please?"})

	body := `{"sessionId":"sess-1","message":{"sender":"scammer","text":"` + scamOpener + `","timestamp":1735689600000}}`
	req := httptest.NewRequest(http.MethodPost, "/honeypot", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Honeypot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp honeypotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Reply)
}

func TestHoneypotEndpoint_MalformedBody(t *testing.T) {
	h := newTestHandler(t, &stubLLM{text: "SAFE"})

	req := httptest.NewRequest(http.MethodPost, "/honeypot", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Honeypot(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestHoneypotEndpoint_MissingFields(t *testing.T) {
	h := newTestHandler(t, &stubLLM{text: "SAFE"})

	tests := []struct {
		name string
		body string
	}{
		{"missing session id", `{"message":{"sender":"scammer","text":"hello"}}`},
		{"missing message text", `{"sessionId":"sess-1","message":{"sender":"scammer"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/honeypot", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Honeypot(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSessionEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubLLM{text: "Who is this, beta, and what is your number?"})

	// Seed one turn through the engine.
	body := `{"sessionId":"sess-dbg","message":{"sender":"scammer","text":"` + scamOpener + `"}}`
	seedReq := httptest.NewRequest(http.MethodPost, "/honeypot", strings.NewReader(body))
	h.Honeypot(httptest.NewRecorder(), seedReq)

	r := chi.NewRouter()
	r.Get("/session/{sessionID}", h.GetSession)

	req := httptest.NewRequest(http.MethodGet, "/session/sess-dbg", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var session Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "sess-dbg", session.ID)
	assert.True(t, session.ScamDetected)
	assert.Len(t, session.History, 2)

	req = httptest.NewRequest(http.MethodGet, "/session/unknown", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubLLM{text: "SAFE"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.EqualValues(t, 0, resp["activeSessions"])
	assert.EqualValues(t, 1, resp["availableCredentials"])
}

func TestServiceInfoEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubLLM{text: "SAFE"})

	rec := httptest.NewRecorder()
	h.ServiceInfo(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Scam Honeypot API", resp["service"])
	assert.Equal(t, "1.0.0", resp["version"])
}

func TestListSessionsEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubLLM{text: "Tell me your name and phone number please, beta?"})

	for _, id := range []string{"s1", "s2"} {
		body := `{"sessionId":"` + id + `","message":{"sender":"scammer","text":"` + scamOpener + `"}}`
		h.Honeypot(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/honeypot", strings.NewReader(body)))
	}

	rec := httptest.NewRecorder()
	h.ListSessions(rec, httptest.NewRequest(http.MethodGet, "/admin/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count    int              `json:"count"`
		Sessions []sessionSummary `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.True(t, resp.Sessions[0].ScamDetected)
}
