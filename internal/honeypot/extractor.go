package honeypot

import (
	"regexp"
	"sort"
	"strings"
)

// Extraction patterns, compiled once at package load.
var (
	// Anything shaped local-part@domain-part. Split into UPI ids vs email
	// addresses afterwards based on the domain.
	handleRe = regexp.MustCompile(`\b[A-Za-z0-9][A-Za-z0-9._-]*@[A-Za-z][A-Za-z0-9.-]*\b`)

	// Indian mobile numbering: exactly 10 digits, leading 6-9.
	phoneRe = regexp.MustCompile(`\b[6-9]\d{9}\b`)

	urlRe = regexp.MustCompile(`https?://[^\s"'<>]+`)

	// Bank-account-shaped digit runs. Phones are excluded separately.
	bankRe = regexp.MustCompile(`\b\d{11,18}\b`)

	emailShapeRe = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// Domains whose handles are ordinary mailboxes, not UPI payment handles.
var publicMailProviders = map[string]struct{}{
	"gmail":   {},
	"yahoo":   {},
	"hotmail": {},
	"outlook": {},
}

// ExtractIntelligence scans conversation text for payment identifiers, phone
// numbers, links, and lure vocabulary. Pure and idempotent: the same text
// always yields the same record, and the classification rules guarantee a
// token lands in at most one of {upiIds, emailAddresses} and at most one of
// {phoneNumbers, bankAccounts}.
func ExtractIntelligence(conversationText string) IntelligenceRecord {
	record := IntelligenceRecord{
		BankAccounts:       []string{},
		UPIIDs:             []string{},
		PhoneNumbers:       []string{},
		PhishingLinks:      []string{},
		EmailAddresses:     []string{},
		SuspiciousKeywords: []string{},
	}

	upiSet := map[string]struct{}{}
	emailSet := map[string]struct{}{}
	for _, handle := range handleRe.FindAllString(conversationText, -1) {
		if isPublicMailbox(handle) {
			if emailShapeRe.MatchString(handle) {
				emailSet[handle] = struct{}{}
			}
			continue
		}
		upiSet[handle] = struct{}{}
	}

	phoneSet := map[string]struct{}{}
	for _, phone := range phoneRe.FindAllString(conversationText, -1) {
		phoneSet[phone] = struct{}{}
	}

	linkSet := map[string]struct{}{}
	for _, link := range urlRe.FindAllString(conversationText, -1) {
		linkSet[strings.TrimRight(link, ".,;:!?)")] = struct{}{}
	}

	bankSet := map[string]struct{}{}
	for _, account := range bankRe.FindAllString(conversationText, -1) {
		if _, isPhone := phoneSet[account]; isPhone {
			continue
		}
		bankSet[account] = struct{}{}
	}

	lowered := strings.ToLower(conversationText)
	keywordSet := map[string]struct{}{}
	for _, keyword := range suspiciousKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			keywordSet[keyword] = struct{}{}
		}
	}

	record.UPIIDs = sortedKeys(upiSet)
	record.EmailAddresses = sortedKeys(emailSet)
	record.PhoneNumbers = sortedKeys(phoneSet)
	record.PhishingLinks = sortedKeys(linkSet)
	record.BankAccounts = sortedKeys(bankSet)
	record.SuspiciousKeywords = sortedKeys(keywordSet)
	return record
}

// isPublicMailbox reports whether the handle's domain belongs to a known
// consumer mail provider. Those handles are emails; everything else with an
// @ is treated as a UPI payment handle.
func isPublicMailbox(handle string) bool {
	at := strings.LastIndex(handle, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(handle[at+1:])
	label, _, _ := strings.Cut(domain, ".")
	_, ok := publicMailProviders[label]
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
