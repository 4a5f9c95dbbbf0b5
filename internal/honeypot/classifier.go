package honeypot

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashwinrao/scam-honeypot/internal/observability/metrics"
	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

// ClassificationMethod records which path produced the verdict.
type ClassificationMethod string

const (
	MethodKeyword ClassificationMethod = "keyword"
	MethodModel   ClassificationMethod = "model"
)

// Classification is an explicit verdict rather than a bare bool so callers
// can tell "confidently safe" apart from "degraded decision" made while the
// classification service was unreachable.
type Classification struct {
	Detected       bool
	Method         ClassificationMethod
	KeywordMatches int
	Degraded       bool
	DegradedReason string
}

const classifierSystemPrompt = `You are a scam detection system for SMS and chat messages.
Common scam indicators: urgency (account blocked, verify now), requests for
money or UPI or bank details, threats of suspension, too-good-to-be-true
offers, impersonation of banks or government, phishing links.
Respond with ONLY one word: "SCAM" or "SAFE".`

// ScamClassifier decides whether a first message is a fraud attempt using
// the keyword lexicon, with one model call as tiebreaker when no keyword
// fires. The model path can only add detections: an unreachable model
// degrades to the keyword-only verdict, never overrides a keyword hit.
type ScamClassifier struct {
	gateway *ModelGateway
	logger  *logging.Logger
	metrics *metrics.HoneypotMetrics
}

// NewScamClassifier creates a classifier over the model gateway.
func NewScamClassifier(gateway *ModelGateway, logger *logging.Logger, m *metrics.HoneypotMetrics) *ScamClassifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScamClassifier{
		gateway: gateway,
		logger:  logger,
		metrics: m,
	}
}

// Classify evaluates one message. Called once per session, on the first
// inbound message; the engine caches the verdict on the session.
func (c *ScamClassifier) Classify(ctx context.Context, messageText string) Classification {
	matches := CountLexiconMatches(messageText)
	if matches >= 1 {
		c.metrics.ObserveScamDetection(string(MethodKeyword))
		return Classification{
			Detected:       true,
			Method:         MethodKeyword,
			KeywordMatches: matches,
		}
	}

	prompt := fmt.Sprintf("Analyze this message carefully.\n\nMessage: %q\n\nAnswer with one word: SCAM or SAFE.", messageText)
	raw, err := c.gateway.Complete(ctx, LLMRequest{
		System:    classifierSystemPrompt,
		Prompt:    prompt,
		MaxTokens: 8,
	})
	if err != nil {
		c.logger.Warn("classification model unreachable, degrading to keyword verdict", "error", err)
		c.metrics.ObserveLLMRequest("classify", "error")
		return Classification{
			Detected:       false,
			Method:         MethodModel,
			KeywordMatches: matches,
			Degraded:       true,
			DegradedReason: err.Error(),
		}
	}

	c.metrics.ObserveLLMRequest("classify", "ok")
	detected := strings.Contains(strings.ToUpper(raw), "SCAM")
	if detected {
		c.metrics.ObserveScamDetection(string(MethodModel))
	}
	return Classification{
		Detected:       detected,
		Method:         MethodModel,
		KeywordMatches: matches,
	}
}
