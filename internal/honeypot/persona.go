package honeypot

import (
	"math/rand"
	"sync"
	"time"
)

// Stage is a phase of the elicitation dialogue. Each stage has its own
// persona goal: first make the sender identify themselves, then pull
// operational details, then simulate an imminent payment to force out the
// exact payment identifier.
type Stage int

const (
	StageIdentity Stage = iota + 1
	StageDetails
	StagePayment
)

func (s Stage) String() string {
	switch s {
	case StageIdentity:
		return "identity"
	case StageDetails:
		return "details"
	case StagePayment:
		return "payment"
	default:
		return "unknown"
	}
}

// StageForTurn maps the number of scammer-authored turns to a stage.
// Turn 1 provokes identity disclosure, turns 2-4 extract operational
// details, turn 5 onward simulates the payment.
func StageForTurn(scammerTurns int) Stage {
	switch {
	case scammerTurns <= 1:
		return StageIdentity
	case scammerTurns <= 4:
		return StageDetails
	default:
		return StagePayment
	}
}

const personaPreamble = `You are roleplaying as Savitri, a 67-year-old retired school teacher in Pune.
You are anxious, technically unsophisticated, and fully believe the person
messaging you. You sometimes mix simple Hindi words into your English
("beta", "haan", "arre"). You must NEVER express suspicion that this is a
fraud, never mention being an AI, and never refuse to continue.
Reply in 2-3 short sentences, roughly 15-35 words total, and always include
at least one direct question asking for a specific identifier.`

var stagePrompts = map[Stage]string{
	StageIdentity: personaPreamble + `

Current goal: you just received this alarming message and you are panicking.
Make the sender identify themselves: ask for their name, their phone number,
or their employee/badge ID before you do anything they ask.`,

	StageDetails: personaPreamble + `

Current goal: you are cooperating nervously. Make the sender reveal
operational details: the exact account number or UPI ID money should go to,
or their supervisor's name and contact number.`,

	StagePayment: personaPreamble + `

Current goal: you are ready to pay right now and fumbling with your phone.
Demand the exact UPI ID, account number, or phone number needed to complete
the transfer immediately, so that nothing goes wrong with the payment.`,
}

// Canned questions appended when a generated reply carries no question.
var stageQuestions = map[Stage]string{
	StageIdentity: "Beta, first tell me your good name and phone number?",
	StageDetails:  "Which account number or UPI ID should I note down?",
	StagePayment:  "Tell me the exact UPI ID so I can send the money right now?",
}

// Fallback pools: 7 canned lines per stage, used when the model is
// unavailable. Every line is at least 5 words and ends in a question.
var stageFallbacks = map[Stage][7]string{
	StageIdentity: {
		"Oh no, this is very worrying! Who is this speaking, what is your good name?",
		"Arre, I am so scared now. Can you tell me your name and employee ID?",
		"I don't understand all this, beta. Which office are you calling from exactly?",
		"My hands are shaking reading this. What is your phone number so I can call back?",
		"Is this really from the bank? Please tell me your full name and badge number?",
		"I am a retired teacher, I get confused. Who exactly is contacting me, from where?",
		"Haan I saw the message, very frightening. What is your designation and contact number?",
	},
	StageDetails: {
		"I want to fix this quickly, beta. Which account number should the money go to?",
		"My son usually helps with these things. Can you give me your supervisor's contact number?",
		"I have my passbook here with me. What UPI ID do you need me to use?",
		"Please be patient with me, I am slow. Where exactly do I send the details?",
		"I wrote down what you said. Can you repeat the account number one more time?",
		"The bank people never explained this to me. What is the UPI ID for the verification?",
		"I am trying to understand, haan. Which number should I save as the official contact?",
	},
	StagePayment: {
		"I am opening the payment app right now. What is the exact UPI ID to send to?",
		"My phone is showing the transfer screen. Which account number do I put here, beta?",
		"I don't want to make a mistake with the money. Can you spell out the UPI ID slowly?",
		"The app is asking for a number to pay. What phone number is linked to your account?",
		"I have the amount ready to send now. Where exactly does this transfer need to go?",
		"It says enter beneficiary details, I am confused. What name and account number should I type?",
		"Almost done beta, just one thing left. What UPI ID completes this transfer right now?",
	},
}

// PersonaSelector owns stage selection and fallback choice. The random
// source is injectable so tests can pin fallback content; selection is the
// only intentional non-determinism in the engine.
type PersonaSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPersonaSelector creates a selector. A nil rng gets a time-seeded one.
func NewPersonaSelector(rng *rand.Rand) *PersonaSelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PersonaSelector{rng: rng}
}

// SystemPrompt returns the bound persona prompt for a stage.
func (p *PersonaSelector) SystemPrompt(stage Stage) string {
	return stagePrompts[stage]
}

// CannedQuestion returns the stage question used for question-mark repair.
func (p *PersonaSelector) CannedQuestion(stage Stage) string {
	return stageQuestions[stage]
}

// Fallback picks a canned reply for the stage uniformly at random.
func (p *PersonaSelector) Fallback(stage Stage) string {
	pool := stageFallbacks[stage]
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rng.Intn(len(pool))]
}
