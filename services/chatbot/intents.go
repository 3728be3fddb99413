package chatbot

import (
	"regexp"
	"strings"
)

const (
	IntentGreeting      = "greeting"
	IntentFindProvider  = "find_provider"
	IntentBookingHelp   = "booking_help"
	IntentPaymentHelp   = "payment_help"
	IntentCertification = "certification_help"
	IntentDispute       = "dispute_help"
	IntentPricing       = "pricing"
	IntentThanks        = "thanks"
	IntentFallback      = "fallback"
)

type rule struct {
	intent  string
	pattern *regexp.Regexp
	reply   string
}

// Rules are tried in order; the first match wins.
var rules = []rule{
	{IntentFindProvider, regexp.MustCompile(`(?i)\b(find|need|looking for|search|hire|get)\b.*\b(plumb\w*|electric\w*|carpent\w*|clean\w*|paint\w*|mechanic|garden\w*|handyman|fixer|provider)`), ""},
	{IntentBookingHelp, regexp.MustCompile(`(?i)\b(book(ing)?|appointment|schedule|cancel|quote|reschedul\w*)\b`),
		"To book, open a provider's profile and choose a date and time. You can ask for a quote first, and you can cancel any booking that has not been completed."},
	{IntentPaymentHelp, regexp.MustCompile(`(?i)\b(pay(ment)?|card|stripe|bank transfer|cash|invoice|refund)\b`),
		"You can pay by card, bank transfer, or cash once your provider accepts the job. Bank transfers and cash are confirmed by the provider, and an invoice is emailed when the booking is paid."},
	{IntentCertification, regexp.MustCompile(`(?i)\b(certif\w*|badge|level|points|verified)\b`),
		"Providers earn points for each approved certification. Levels go bronze, silver (50), gold (150), platinum (300) and diamond (500)."},
	{IntentDispute, regexp.MustCompile(`(?i)\b(dispute|complain\w*|problem|issue|damage|no.?show)\b`),
		"Sorry to hear that. Open a dispute from the booking page and our team will review it. You can add messages and photos while it is open."},
	{IntentPricing, regexp.MustCompile(`(?i)\b(price|cost|rate|how much|expensive|cheap)\b`),
		"Each provider sets an hourly rate shown on their profile. For larger jobs, request a quote before booking."},
	{IntentThanks, regexp.MustCompile(`(?i)\b(thanks?|thank you|cheers)\b`),
		"You're welcome! Anything else I can help with?"},
	{IntentGreeting, regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good (morning|afternoon|evening))\b`),
		"Hi! I can help you find a provider, explain bookings and payments, or open a dispute."},
}

// categoryWords maps word stems users type to provider service categories, checked in order.
var categoryWords = []struct{ stem, category string }{
	{"plumb", "plumbing"},
	{"electric", "electrical"},
	{"carpent", "carpentry"},
	{"clean", "cleaning"},
	{"paint", "painting"},
	{"mechanic", "mechanic"},
	{"gard", "gardening"},
	{"handyman", "handyman"},
}

var locationPattern = regexp.MustCompile(`(?i)\b(?:in|near|around)\s+([a-z][a-z\s]{1,40}?)(?:[.,!?]|$)`)

// Classify returns the intent for message and the canned reply, if any.
func Classify(message string) (string, string) {
	for _, r := range rules {
		if r.pattern.MatchString(message) {
			return r.intent, r.reply
		}
	}
	return IntentFallback, ""
}

// ExtractSearch pulls a service category and location out of a provider search message.
func ExtractSearch(message string) (category, location string) {
	lower := strings.ToLower(message)
	for _, w := range categoryWords {
		if strings.Contains(lower, w.stem) {
			category = w.category
			break
		}
	}
	if m := locationPattern.FindStringSubmatch(lower); m != nil {
		location = strings.TrimSpace(m[1])
	}
	return category, location
}
