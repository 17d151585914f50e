package domain

import "time"

// Record is a write-once CRM entry. ID is the storage key
// (crm:{type}:{unix millis}); there are no update or delete operations.
type Record struct {
	ID              string    `json:"id,omitempty"`
	Type            string    `json:"type"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	CustomerPhone   string    `json:"customerPhone"`
	AppointmentDate string    `json:"appointmentDate,omitempty"`
	AppointmentTime string    `json:"appointmentTime,omitempty"`
	Service         string    `json:"service,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
	Source          string    `json:"source,omitempty"`
}

// SheetsRow is the denormalized export-shaped copy of an appointment,
// written alongside the primary CRM record on every booking.
type SheetsRow struct {
	Timestamp       time.Time `json:"timestamp"`
	CustomerName    string    `json:"customerName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Service         string    `json:"service"`
	AppointmentDate string    `json:"appointmentDate"`
	AppointmentTime string    `json:"appointmentTime"`
	Notes           string    `json:"notes"`
	Source          string    `json:"source"`
}

// NotificationRecord is the bookkeeping entry for a composed notification.
// Content is generated and recorded, never handed to a carrier.
type NotificationRecord struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	RecipientEmail string         `json:"recipientEmail"`
	RecipientPhone string         `json:"recipientPhone"`
	EmailContent   string         `json:"emailContent"`
	SMSContent     string         `json:"smsContent"`
	SentAt         time.Time      `json:"sentAt"`
	Status         string         `json:"status"`
	Data           map[string]any `json:"data,omitempty"`
}
