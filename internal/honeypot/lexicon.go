package honeypot

import "strings"

// scamLexicon is the fraud-indicator vocabulary checked by the classifier.
// Matching is case-insensitive substring containment; entries are grouped by
// the kind of lure they signal. Compiled once at package load into the
// lower-cased form the matcher uses.
var scamLexicon = []string{
	// Urgency / pressure
	"urgent",
	"urgently",
	"immediately",
	"right now",
	"act now",
	"within 24 hours",
	"within 2 hours",
	"last warning",
	"final warning",
	"final notice",
	"last chance",
	"expires today",
	"expire",
	"limited time",
	"don't delay",
	"do not ignore",
	"time sensitive",

	// Account threats
	"account blocked",
	"account is blocked",
	"account suspended",
	"account will be suspended",
	"account locked",
	"account closed",
	"account deactivated",
	"blocked",
	"suspended",
	"deactivated",
	"unauthorized transaction",
	"suspicious activity",
	"unusual activity",
	"security alert",
	"account compromised",

	// Verification / credential lures
	"verify",
	"verification",
	"re-verify",
	"reverify",
	"verify your account",
	"verify immediately",
	"confirm your identity",
	"update your details",
	"update kyc",
	"kyc",
	"kyc pending",
	"kyc expired",
	"otp",
	"one time password",
	"share otp",
	"pin number",
	"cvv",
	"card number",
	"debit card",
	"credit card",
	"net banking",
	"password",
	"login credentials",
	"aadhaar",
	"aadhar",
	"pan card",
	"pan number",

	// Payment apps / transfer rails
	"upi",
	"upi id",
	"upi pin",
	"paytm",
	"phonepe",
	"google pay",
	"gpay",
	"bhim",
	"imps",
	"neft",
	"rtgs",
	"wallet",
	"cashback",
	"payment failed",
	"payment pending",
	"refund",
	"refund pending",
	"process the refund",
	"transfer the amount",
	"send money",
	"pay now",
	"processing fee",
	"registration fee",
	"clearance fee",
	"advance payment",
	"security deposit",

	// Authority impersonation
	"bank official",
	"bank manager",
	"customer care",
	"customer support",
	"rbi",
	"reserve bank",
	"income tax",
	"tax department",
	"police",
	"cyber cell",
	"cbi",
	"telecom department",
	"electricity bill",
	"sim card will be blocked",
	"courier",
	"customs",
	"legal action",
	"arrest warrant",
	"money laundering case",

	// Prize / too-good-to-be-true
	"congratulations",
	"lottery",
	"lucky draw",
	"prize",
	"winner",
	"you have won",
	"claim your",
	"free gift",
	"reward points",
	"jackpot",
	"work from home",
	"earn money",
	"guaranteed returns",
	"double your money",
	"investment opportunity",
	"crypto",
	"bitcoin",
}

// suspiciousKeywords is the short lexicon the extractor reports verbatim in
// intelligence records. Distinct from scamLexicon: this is the evidence set
// the collector sees, not the classification vocabulary.
var suspiciousKeywords = []string{
	"urgent",
	"verify",
	"blocked",
	"suspended",
	"immediately",
	"account",
	"bank",
	"OTP",
	"password",
	"expire",
	"confirm",
	"prize",
	"winner",
	"KYC",
	"refund",
	"lottery",
}

var loweredScamLexicon = func() []string {
	out := make([]string, len(scamLexicon))
	for i, term := range scamLexicon {
		out[i] = strings.ToLower(term)
	}
	return out
}()

// CountLexiconMatches returns the number of distinct scam-lexicon entries
// contained in text, case-insensitively.
func CountLexiconMatches(text string) int {
	lowered := strings.ToLower(text)
	count := 0
	for _, term := range loweredScamLexicon {
		if strings.Contains(lowered, term) {
			count++
		}
	}
	return count
}
