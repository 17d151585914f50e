package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"receptionist-agent/internal/domain"
)

func TestClassify_RulePrecedence(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    Intent
	}{
		{"appointment keyword", "I'd like an appointment", IntentAppointment},
		{"schedule keyword", "Can I schedule something?", IntentAppointment},
		{"book keyword", "book me in please", IntentAppointment},
		{"appointment beats cancel", "book an appointment but first let me cancel the old one", IntentAppointment},
		{"hours", "What are your hours today?", IntentHours},
		{"open", "Are you open on Saturday?", IntentHours},
		{"close", "When do you close?", IntentHours},
		{"cancel", "I need to cancel", IntentCancel},
		{"insurance", "Do you take insurance?", IntentBilling},
		{"payment", "What payment options exist?", IntentBilling},
		{"cost", "How much does it cost?", IntentBilling},
		{"wait time", "What's the wait time?", IntentWaitTime},
		{"how long", "How long until I'm seen?", IntentWaitTime},
		{"general fallback", "Can I speak to someone about your services?", IntentGeneral},
		{"case insensitive", "BOOK AN APPOINTMENT", IntentAppointment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.message))
		})
	}
}

func TestClassify_HoursBeatsCancel(t *testing.T) {
	// "open" is rule 2, "cancel" rule 3; first match wins.
	require.Equal(t, IntentHours, Classify("are you open? I might cancel"))
}

func TestExtractEntities(t *testing.T) {
	cases := []struct {
		name     string
		message  string
		wantDay  string
		wantTime string
	}{
		{"day and time", "I'd like to schedule an appointment for next Tuesday at 2 PM", "tuesday", "2 pm"},
		{"am time", "book me monday 9am", "monday", "9 am"},
		{"o'clock", "schedule for friday at 3 o'clock", "friday", "3 o'clock"},
		{"tomorrow", "can I come in tomorrow?", "tomorrow", DefaultTime},
		{"next week", "schedule me for next week", "next week", DefaultTime},
		{"defaults", "I want an appointment", DefaultDay, DefaultTime},
		{"first match wins", "monday or tuesday, 2 pm or 4 pm", "monday", "2 pm"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := ExtractEntities(tc.message)
			require.Equal(t, tc.wantDay, e.Day)
			require.Equal(t, tc.wantTime, e.Time)
		})
	}
}

func TestExtractEntities_NeverEmpty(t *testing.T) {
	e := ExtractEntities("")
	require.NotEmpty(t, e.Day)
	require.NotEmpty(t, e.Time)
}

func TestProcess_Appointment(t *testing.T) {
	out := Process("I'd like to schedule an appointment for next Tuesday at 2 PM", nil)

	require.Equal(t, IntentAppointment, out.Intent)
	require.Equal(t, ActionBookAppointment, out.Action)
	require.Equal(t, ReplyConfidence, out.Confidence)
	require.Contains(t, out.Response, "tuesday at 2 pm")

	require.NotNil(t, out.FormData)
	require.Equal(t, "appointment", out.FormData.Type)
	require.Equal(t, "New Customer", out.FormData.CustomerName)
	require.Equal(t, "customer@example.com", out.FormData.CustomerEmail)
	require.Equal(t, "(555) 123-4567", out.FormData.CustomerPhone)
	require.Equal(t, "tuesday", out.FormData.AppointmentDate)
	require.Equal(t, "2 pm", out.FormData.AppointmentTime)
	require.Equal(t, "General Consultation", out.FormData.Service)
	require.Equal(t, "confirmed", out.FormData.Status)
}

func TestProcess_AppointmentWithCustomerInfo(t *testing.T) {
	out := Process("book me in", &domain.CustomerInfo{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Phone: "(555) 000-0000",
	})
	require.NotNil(t, out.FormData)
	require.Equal(t, "Ada Lovelace", out.FormData.CustomerName)
	require.Equal(t, "ada@example.com", out.FormData.CustomerEmail)
	require.Equal(t, "(555) 000-0000", out.FormData.CustomerPhone)
}

func TestProcess_NonAppointmentIntents(t *testing.T) {
	cases := []struct {
		name       string
		message    string
		wantAction string
	}{
		{"hours", "what are your hours?", ""},
		{"cancel", "I need to cancel my appt", ActionCancelRequest},
		{"billing", "do you take insurance?", ""},
		{"wait time", "what's the wait time?", ""},
		{"general", "tell me about your services", ActionTransferToHuman},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Process(tc.message, nil)
			require.Equal(t, tc.wantAction, out.Action)
			require.Nil(t, out.FormData)
			require.NotEmpty(t, out.Response)
		})
	}
}

func TestProcess_Deterministic(t *testing.T) {
	msg := "schedule me for wednesday at 4 pm"
	first := Process(msg, nil)
	second := Process(msg, nil)
	require.Equal(t, first, second)
}

func TestProcess_ResponseNeverTechnical(t *testing.T) {
	for _, msg := range []string{"", "????", "asdf qwerty"} {
		out := Process(msg, nil)
		require.NotEmpty(t, out.Response)
		require.False(t, strings.Contains(strings.ToLower(out.Response), "error"))
	}
}
