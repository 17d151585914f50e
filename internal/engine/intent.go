// Package engine holds the deterministic conversation pipeline: intent
// classification, day/time entity extraction and reply generation. It is
// pure (no I/O) and is shared by the server pipeline and the client-side
// offline path, so both produce identical replies for identical input.
package engine

import "strings"

// Intent is the single category assigned to a customer message.
type Intent string

const (
	IntentAppointment Intent = "APPOINTMENT"
	IntentHours       Intent = "HOURS"
	IntentCancel      Intent = "CANCEL"
	IntentBilling     Intent = "BILLING"
	IntentWaitTime    Intent = "WAIT_TIME"
	IntentGeneral     Intent = "GENERAL"
)

type rule struct {
	keywords []string
	intent   Intent
}

// rules is evaluated in order; the first rule with any keyword contained in
// the lower-cased message wins. The order is a behavioral contract: a
// message with both "cancel" and "appointment" resolves to APPOINTMENT
// because that rule is checked first.
var rules = []rule{
	{keywords: []string{"appointment", "schedule", "book"}, intent: IntentAppointment},
	{keywords: []string{"hours", "open", "close"}, intent: IntentHours},
	{keywords: []string{"cancel"}, intent: IntentCancel},
	{keywords: []string{"insurance", "payment", "cost"}, intent: IntentBilling},
	{keywords: []string{"wait time", "how long"}, intent: IntentWaitTime},
}

// Classify assigns exactly one intent to a message.
func Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return IntentGeneral
}
