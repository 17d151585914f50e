package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"receptionist-agent/internal/store"
)

func newComposer(t *testing.T) (*Composer, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	c, err := NewComposer(kv, &store.Clock{})
	require.NoError(t, err)
	return c, kv
}

func appointmentData() map[string]any {
	return map[string]any{
		"customerName":    "Ada Lovelace",
		"appointmentDate": "tuesday",
		"appointmentTime": "2 pm",
		"service":         "General Consultation",
	}
}

func TestCompose_AppointmentConfirmation(t *testing.T) {
	email, sms := Compose(TypeAppointmentConfirmation, appointmentData())

	require.Contains(t, email, "Appointment Confirmation")
	require.Contains(t, email, "Dear Ada Lovelace,")
	require.Contains(t, email, "<strong>Date:</strong> tuesday")
	require.Contains(t, email, "<strong>Time:</strong> 2 pm")
	require.Contains(t, email, "<strong>Service:</strong> General Consultation")

	require.Equal(t, "Appointment confirmed for tuesday at 2 pm. Service: General Consultation. Reply STOP to opt out.", sms)
}

func TestCompose_UnsupportedTypeYieldsEmptyContent(t *testing.T) {
	email, sms := Compose("order_shipped", appointmentData())
	require.Empty(t, email)
	require.Empty(t, sms)
}

func TestSend_WritesRecordWithStatusSent(t *testing.T) {
	c, kv := newComposer(t)

	rec, err := c.Send(context.Background(), Input{
		Type:           TypeAppointmentConfirmation,
		RecipientEmail: "ada@example.com",
		RecipientPhone: "(555) 000-0000",
		Data:           appointmentData(),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rec.ID, "notification:appointment_confirmation:"))
	require.Equal(t, "sent", rec.Status)
	require.NotEmpty(t, rec.EmailContent)
	require.NotEmpty(t, rec.SMSContent)
	require.False(t, rec.SentAt.IsZero())

	raws, err := kv.GetByPrefix(context.Background(), "notification:appointment_confirmation:")
	require.NoError(t, err)
	require.Len(t, raws, 1)
}

func TestSend_UnsupportedTypeStillWritesRecord(t *testing.T) {
	c, kv := newComposer(t)

	rec, err := c.Send(context.Background(), Input{Type: "order_shipped"})
	require.NoError(t, err)
	require.Empty(t, rec.EmailContent)
	require.Empty(t, rec.SMSContent)
	require.Equal(t, "sent", rec.Status)

	raws, err := kv.GetByPrefix(context.Background(), "notification:order_shipped:")
	require.NoError(t, err)
	require.Len(t, raws, 1)
}

func TestSend_RequiresType(t *testing.T) {
	c, _ := newComposer(t)
	_, err := c.Send(context.Background(), Input{})
	require.Error(t, err)
}
