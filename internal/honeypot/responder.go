package honeypot

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashwinrao/scam-honeypot/internal/observability/metrics"
	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

// Words scrubbed from model output before it is sent back to the scammer.
// The persona is a polite retired teacher; stray profanity breaks character.
var profanities = []string{"damn", "bloody hell", "shit", "bastard"}

// Responder turns an inbound scammer message into an in-character reply:
// stage selection, one gateway call, post-processing, and canned fallback
// when the model is unavailable.
type Responder struct {
	gateway  *ModelGateway
	selector *PersonaSelector
	logger   *logging.Logger
	metrics  *metrics.HoneypotMetrics
}

// NewResponder creates a responder over the gateway and persona selector.
func NewResponder(gateway *ModelGateway, selector *PersonaSelector, logger *logging.Logger, m *metrics.HoneypotMetrics) *Responder {
	if selector == nil {
		selector = NewPersonaSelector(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{
		gateway:  gateway,
		selector: selector,
		logger:   logger,
		metrics:  m,
	}
}

// GenerateReply produces the agent's next turn. history already contains the
// current scammer message. Never returns an error: every failure path lands
// on a stage-appropriate canned reply.
func (r *Responder) GenerateReply(ctx context.Context, messageText string, history []Message) string {
	stage := StageForTurn(countScammerTurns(history))

	raw, err := r.gateway.Complete(ctx, LLMRequest{
		System:      r.selector.SystemPrompt(stage),
		Prompt:      buildReplyPrompt(messageText, history),
		MaxTokens:   120,
		Temperature: 0.9,
	})
	if err != nil {
		r.metrics.ObserveLLMRequest("reply", "error")
		r.metrics.ObserveFallback(stage.String())
		r.logger.Warn("reply generation failed, using fallback pool",
			"stage", stage.String(),
			"error", err,
		)
		return r.selector.Fallback(stage)
	}
	r.metrics.ObserveLLMRequest("reply", "ok")

	reply, ok := polishReply(raw, r.selector.CannedQuestion(stage))
	if !ok {
		r.metrics.ObserveFallback(stage.String())
		r.logger.Debug("model reply too short, using fallback pool", "stage", stage.String())
		return r.selector.Fallback(stage)
	}
	return reply
}

// buildReplyPrompt embeds the conversation so far plus the new message, the
// same single-prompt shape the classifier uses.
func buildReplyPrompt(messageText string, history []Message) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Sender, msg.Text)
	}
	fmt.Fprintf(&b, "\nNew scammer message: %q\n\nYour reply (only the reply, nothing else):", messageText)
	return b.String()
}

// polishReply applies the output contract to raw model text: strip wrapping
// quotes and profanity, reject replies under 5 words, and guarantee at least
// one question by appending the stage's canned question.
func polishReply(raw, cannedQuestion string) (string, bool) {
	reply := strings.TrimSpace(raw)
	reply = strings.Trim(reply, "\"'“”‘’")
	reply = strings.TrimSpace(reply)

	lowered := strings.ToLower(reply)
	for _, word := range profanities {
		if idx := strings.Index(lowered, word); idx >= 0 {
			reply = strings.TrimSpace(reply[:idx] + reply[idx+len(word):])
			lowered = strings.ToLower(reply)
		}
	}

	if len(strings.Fields(reply)) < 5 {
		return "", false
	}
	if !strings.Contains(reply, "?") {
		reply = reply + " " + cannedQuestion
	}
	return reply, true
}

func countScammerTurns(history []Message) int {
	n := 0
	for _, msg := range history {
		if msg.Sender == SenderScammer {
			n++
		}
	}
	return n
}
