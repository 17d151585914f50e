// Package notify turns stored records into channel-specific notification
// content. Content is generated and recorded, never handed to a carrier.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"receptionist-agent/internal/domain"
	"receptionist-agent/internal/store"
)

// TypeAppointmentConfirmation is the only notification type with templates.
const TypeAppointmentConfirmation = "appointment_confirmation"

// Input is a notification request.
type Input struct {
	Type           string
	RecipientEmail string
	RecipientPhone string
	Data           map[string]any
}

// Composer renders notification templates and books the result under
// notification:{type}:{ts} with status "sent".
type Composer struct {
	kv    store.KV
	clock *store.Clock
}

// NewComposer creates a composer over the given substrate.
func NewComposer(kv store.KV, clock *store.Clock) (*Composer, error) {
	if kv == nil {
		return nil, errors.New("notify: kv must not be nil")
	}
	if clock == nil {
		return nil, errors.New("notify: clock must not be nil")
	}
	return &Composer{kv: kv, clock: clock}, nil
}

// Send composes the content for in and writes the bookkeeping record.
// Unsupported types produce empty content strings but still write a record,
// keeping the write path uniform.
func (c *Composer) Send(ctx context.Context, in Input) (domain.NotificationRecord, error) {
	if strings.TrimSpace(in.Type) == "" {
		return domain.NotificationRecord{}, errors.New("notify: send: type is required")
	}
	emailContent, smsContent := Compose(in.Type, in.Data)

	ts := c.clock.Next()
	key := "notification:" + in.Type + ":" + store.FormatTS(ts)
	rec := domain.NotificationRecord{
		ID:             key,
		Type:           in.Type,
		RecipientEmail: in.RecipientEmail,
		RecipientPhone: in.RecipientPhone,
		EmailContent:   emailContent,
		SMSContent:     smsContent,
		SentAt:         time.UnixMilli(ts).UTC(),
		Status:         "sent",
		Data:           in.Data,
	}
	if err := c.kv.Set(ctx, key, rec); err != nil {
		return domain.NotificationRecord{}, fmt.Errorf("notify: send: %w", err)
	}
	return rec, nil
}

// Compose renders the email and SMS templates for a notification type.
func Compose(notificationType string, data map[string]any) (emailContent, smsContent string) {
	if notificationType != TypeAppointmentConfirmation {
		return "", ""
	}
	name := field(data, "customerName")
	date := field(data, "appointmentDate")
	timeOfDay := field(data, "appointmentTime")
	service := field(data, "service")

	emailContent = fmt.Sprintf(`<h2>Appointment Confirmation</h2>
<p>Dear %s,</p>
<p>Your appointment has been confirmed for:</p>
<ul>
  <li><strong>Date:</strong> %s</li>
  <li><strong>Time:</strong> %s</li>
  <li><strong>Service:</strong> %s</li>
</ul>
<p>If you need to reschedule or cancel, please contact us at least 24 hours in advance.</p>
<p>Thank you for choosing our services!</p>`,
		name, date, timeOfDay, service)

	smsContent = fmt.Sprintf(
		"Appointment confirmed for %s at %s. Service: %s. Reply STOP to opt out.",
		date, timeOfDay, service)
	return emailContent, smsContent
}

func field(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
