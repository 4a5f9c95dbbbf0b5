package honeypot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ashwinrao/scam-honeypot/internal/observability/metrics"
	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

// NonScamReply is returned for sessions classified as legitimate; the
// persona never engages them.
const NonScamReply = "Thank you for your message."

// Validation errors, surfaced to the caller before any session mutation.
var (
	ErrMissingSessionID = errors.New("honeypot: sessionId is required")
	ErrMissingMessage   = errors.New("honeypot: message text is required")
)

// TurnResult is the engine's answer to one inbound message.
type TurnResult struct {
	Reply        string
	ScamDetected bool
	TurnCount    int
	Stage        Stage
}

// Engine orchestrates one conversation turn: session lookup, first-turn
// classification, persona reply generation, and callback dispatch. The only
// component the transport layer talks to.
type Engine struct {
	store      SessionStore
	classifier *ScamClassifier
	responder  *Responder
	dispatcher *CallbackDispatcher
	logger     *logging.Logger
	metrics    *metrics.HoneypotMetrics
	locks      keyedLocks
	nowFn      func() time.Time
}

// NewEngine wires the conversation engine.
func NewEngine(store SessionStore, classifier *ScamClassifier, responder *Responder, dispatcher *CallbackDispatcher, logger *logging.Logger, m *metrics.HoneypotMetrics) *Engine {
	if store == nil {
		panic("honeypot: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:      store,
		classifier: classifier,
		responder:  responder,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    m,
		nowFn:      time.Now,
	}
}

// Store exposes the session store for the debug/introspection surface.
func (e *Engine) Store() SessionStore {
	return e.store
}

// ProcessTurn handles one inbound scammer message and returns the agent's
// reply. Turns on the same session id are serialized: turn counter, history
// append, and the callback-sent flag are all read-modify-write.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID string, msg Message) (TurnResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return TurnResult{}, ErrMissingSessionID
	}
	if strings.TrimSpace(msg.Text) == "" {
		return TurnResult{}, ErrMissingMessage
	}

	unlock := e.locks.lock(sessionID)
	defer unlock()

	session, err := e.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	if msg.Sender == "" {
		msg.Sender = SenderScammer
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = e.nowFn().UTC()
	}
	session.History = append(session.History, msg)
	session.TurnCount++

	if session.TurnCount == 1 {
		verdict := e.classifier.Classify(ctx, msg.Text)
		session.ScamDetected = verdict.Detected
		e.logger.Info("first-turn classification",
			"session_id", sessionID,
			"detected", verdict.Detected,
			"method", string(verdict.Method),
			"keyword_matches", verdict.KeywordMatches,
			"degraded", verdict.Degraded,
		)
	}

	if !session.ScamDetected {
		if err := e.store.Save(ctx, session); err != nil {
			return TurnResult{}, err
		}
		return TurnResult{
			Reply:     NonScamReply,
			TurnCount: session.TurnCount,
		}, nil
	}

	stage := StageForTurn(session.TurnCount)
	reply := e.responder.GenerateReply(ctx, msg.Text, session.History)
	session.History = append(session.History, Message{
		Sender:    SenderAgent,
		Text:      reply,
		Timestamp: e.nowFn().UTC(),
	})

	e.dispatcher.MaybeSend(ctx, session)

	if err := e.store.Save(ctx, session); err != nil {
		return TurnResult{}, err
	}

	return TurnResult{
		Reply:        reply,
		ScamDetected: true,
		TurnCount:    session.TurnCount,
		Stage:        stage,
	}, nil
}

// keyedLocks serializes turns per session id. Entries are never removed;
// they are a mutex per live session and vanish with the process, same as the
// session map's own lifetime.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
