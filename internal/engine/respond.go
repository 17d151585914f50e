package engine

import (
	"fmt"

	"receptionist-agent/internal/domain"
)

// Downstream action flags attached to generated replies.
const (
	ActionBookAppointment = "book_appointment"
	ActionCancelRequest   = "cancel_request"
	ActionTransferToHuman = "transfer_to_human"
)

// ReplyConfidence is the fixed confidence reported for generated replies.
const ReplyConfidence = 0.92

// Demo customer substituted when no caller identity is supplied.
const (
	demoCustomerName  = "New Customer"
	demoCustomerEmail = "customer@example.com"
	demoCustomerPhone = "(555) 123-4567"
	defaultService    = "General Consultation"
)

const (
	hoursReply = "We're open Monday through Friday from 9:00 AM to 6:00 PM, and Saturdays from 10:00 AM to 4:00 PM. We're closed on Sundays. Is there a specific time you'd like to visit?"

	cancelReply = "I can help you cancel your appointment. Could you please provide your name or appointment confirmation number so I can locate your booking?"

	billingReply = "We accept most major insurance plans including Blue Cross Blue Shield, Aetna, Cigna, and UnitedHealthcare. We also offer flexible payment options. Would you like me to verify your specific insurance coverage?"

	waitTimeReply = "Current wait times are approximately 15-20 minutes for walk-ins. However, I'd be happy to schedule you an appointment to avoid any wait. What time works best for you?"

	generalReply = "Thank you for reaching out! I'd be happy to help you with that. Let me connect you with the right person who can assist you further. In the meantime, is there anything else I can help you with?"
)

// Result is the generated reply plus its optional side-channel data. The
// shape is identical regardless of whether it was produced remotely or by
// the client-side offline path.
type Result struct {
	Intent     Intent
	Response   string
	Action     string
	FormData   *domain.Record
	Confidence float64
}

// Process runs the full pipeline on one message: classify, extract (for
// appointments only) and render the reply template.
func Process(message string, customer *domain.CustomerInfo) Result {
	intent := Classify(message)
	out := Result{Intent: intent, Confidence: ReplyConfidence}

	switch intent {
	case IntentAppointment:
		e := ExtractEntities(message)
		out.Response = fmt.Sprintf(
			"Perfect! I've scheduled your appointment for %s at %s. You'll receive a confirmation email shortly with all the details. Is there anything else I can help you with today?",
			e.Day, e.Time)
		out.Action = ActionBookAppointment
		out.FormData = appointmentForm(e, customer)
	case IntentHours:
		out.Response = hoursReply
	case IntentCancel:
		out.Response = cancelReply
		out.Action = ActionCancelRequest
	case IntentBilling:
		out.Response = billingReply
	case IntentWaitTime:
		out.Response = waitTimeReply
	default:
		out.Response = generalReply
		out.Action = ActionTransferToHuman
	}
	return out
}

func appointmentForm(e Entities, customer *domain.CustomerInfo) *domain.Record {
	form := &domain.Record{
		Type:            "appointment",
		CustomerName:    demoCustomerName,
		CustomerEmail:   demoCustomerEmail,
		CustomerPhone:   demoCustomerPhone,
		AppointmentDate: e.Day,
		AppointmentTime: e.Time,
		Service:         defaultService,
		Status:          "confirmed",
	}
	if customer != nil {
		if customer.Name != "" {
			form.CustomerName = customer.Name
		}
		if customer.Email != "" {
			form.CustomerEmail = customer.Email
		}
		if customer.Phone != "" {
			form.CustomerPhone = customer.Phone
		}
	}
	return form
}
