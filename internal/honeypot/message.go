// Package honeypot implements the conversational scam honeypot engine:
// classification of inbound messages, staged persona replies that elicit
// identifying details from the sender, intelligence extraction, and
// callback dispatch to the downstream collector.
package honeypot

import (
	"fmt"
	"strings"
	"time"
)

// Message senders. Inbound traffic is authored by the scammer; replies the
// engine produces are authored by the agent persona.
const (
	SenderScammer = "scammer"
	SenderAgent   = "agent"
)

// Message is a single conversation turn. Immutable once created; the
// timestamp is already normalized to UTC by the transport boundary.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the mutable per-conversation state. All mutation happens inside
// the engine under a per-session lock; stores only copy it in and out.
type Session struct {
	ID           string    `json:"id"`
	History      []Message `json:"history"`
	ScamDetected bool      `json:"scamDetected"`
	TurnCount    int       `json:"turnCount"`
	CallbackSent bool      `json:"callbackSent"`
	StartedAt    time.Time `json:"startedAt"`
}

// Transcript renders the full history as "sender: text" lines, the form the
// extractor and the model prompts consume.
func (s *Session) Transcript() string {
	var b strings.Builder
	for i, msg := range s.History {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", msg.Sender, msg.Text)
	}
	return b.String()
}

// Clone returns a deep copy so store reads never alias engine-owned state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.History = make([]Message, len(s.History))
	copy(cp.History, s.History)
	return &cp
}

// IntelligenceRecord holds the de-duplicated entities extracted from a
// conversation. Always recomputed from the full history, never stored.
type IntelligenceRecord struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	PhishingLinks      []string `json:"phishingLinks"`
	EmailAddresses     []string `json:"emailAddresses"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// CallbackPayload is the snapshot posted to the intelligence collector.
type CallbackPayload struct {
	SessionID                 string             `json:"sessionId"`
	ScamDetected              bool               `json:"scamDetected"`
	TotalMessagesExchanged    int                `json:"totalMessagesExchanged"`
	EngagementDurationSeconds int                `json:"engagementDurationSeconds"`
	ExtractedIntelligence     IntelligenceRecord `json:"extractedIntelligence"`
	AgentNotes                string             `json:"agentNotes"`
}
