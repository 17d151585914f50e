// Package usecase orchestrates the receptionist pipeline: conversation
// processing, form submission, notifications and the read endpoints.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"receptionist-agent/internal/conversation"
	"receptionist-agent/internal/domain"
	"receptionist-agent/internal/engine"
	"receptionist-agent/internal/events"
	"receptionist-agent/internal/notify"
)

const (
	defaultRecordType  = "appointment"
	defaultRecordLimit = 10

	transcribeConfidence = 0.95
)

// mockTranscriptions stands in for a speech-to-text integration; the
// gateway returns one of these for any submitted audio payload.
var mockTranscriptions = []string{
	"I'd like to schedule an appointment for next Tuesday at 2 PM",
	"What are your business hours today?",
	"I need to cancel my appointment for tomorrow",
	"Do you accept walk-in customers?",
	"Can I speak to someone about your services?",
	"I'm having trouble with my recent order",
	"What's the wait time for appointments?",
	"Is Dr. Smith available this week?",
}

// ConversationLog is the turn persistence consumed by the service.
type ConversationLog interface {
	Append(ctx context.Context, turn domain.ConversationTurn) (domain.ConversationTurn, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error)
}

// RecordStore is the CRM persistence consumed by the service.
type RecordStore interface {
	Create(ctx context.Context, rec domain.Record) (domain.Record, error)
	ListByType(ctx context.Context, recordType string, limit int) ([]domain.Record, int, error)
	ExportSheetsRow(ctx context.Context, rec domain.Record) error
}

// NotificationSender composes and records notifications.
type NotificationSender interface {
	Send(ctx context.Context, in notify.Input) (domain.NotificationRecord, error)
}

// Service wires the conversation engine to the stores. Conversation and
// record writes happen only here, on the server side; the client's offline
// path calls the engine directly and persists nothing.
type Service struct {
	log       ConversationLog
	records   RecordStore
	notifier  NotificationSender
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService validates dependencies and builds a Service.
func NewService(log ConversationLog, records RecordStore, notifier NotificationSender, publisher events.Publisher, logger *slog.Logger) (*Service, error) {
	if log == nil {
		return nil, errors.New("usecase: conversation log must not be nil")
	}
	if records == nil {
		return nil, errors.New("usecase: record store must not be nil")
	}
	if notifier == nil {
		return nil, errors.New("usecase: notification sender must not be nil")
	}
	if publisher == nil {
		return nil, errors.New("usecase: event publisher must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		log:       log,
		records:   records,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}, nil
}

type ProcessInput struct {
	Message      string
	SessionID    string
	CustomerInfo *domain.CustomerInfo
}

type ProcessOutput struct {
	Response   string
	Action     string
	FormData   *domain.Record
	Confidence float64
}

// ProcessConversation records the customer turn, runs the engine and
// records the response turn. The input turn is durably written before the
// response turn; both carry distinct, increasing timestamps.
func (s *Service) ProcessConversation(ctx context.Context, in ProcessInput) (ProcessOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ProcessOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return ProcessOutput{}, newError(ErrorInvalidInput, "empty_session_id", nil)
	}

	if _, err := s.log.Append(ctx, domain.ConversationTurn{
		SessionID:    sessionID,
		Message:      message,
		Kind:         domain.TurnCustomerInput,
		CustomerInfo: in.CustomerInfo,
	}); err != nil {
		return ProcessOutput{}, newError(ErrorStoreFailure, "conversation_write_error", err)
	}

	result := engine.Process(message, in.CustomerInfo)

	if _, err := s.log.Append(ctx, domain.ConversationTurn{
		SessionID: sessionID,
		Message:   result.Response,
		Kind:      domain.TurnAIResponse,
		Action:    result.Action,
		FormData:  result.FormData,
	}); err != nil {
		return ProcessOutput{}, newError(ErrorStoreFailure, "conversation_write_error", err)
	}

	return ProcessOutput{
		Response:   result.Response,
		Action:     result.Action,
		FormData:   result.FormData,
		Confidence: result.Confidence,
	}, nil
}

type TranscribeOutput struct {
	Transcription string
	Confidence    float64
}

// pickIndex is a hook for deterministic tests.
var pickIndex = func(n int) int { return rand.IntN(n) }

// Transcribe returns a canned transcription for the submitted audio
// payload. There is no real speech-to-text integration.
func (s *Service) Transcribe(_ context.Context, audioData string) (TranscribeOutput, error) {
	if strings.TrimSpace(audioData) == "" {
		return TranscribeOutput{}, newError(ErrorInvalidInput, "empty_audio_data", nil)
	}
	return TranscribeOutput{
		Transcription: mockTranscriptions[pickIndex(len(mockTranscriptions))],
		Confidence:    transcribeConfidence,
	}, nil
}

// SubmitForm stores a CRM record and the sheets-shaped export copy,
// returning the generated record id.
func (s *Service) SubmitForm(ctx context.Context, rec domain.Record) (string, error) {
	if strings.TrimSpace(rec.Type) == "" {
		return "", newError(ErrorInvalidInput, "missing_record_type", nil)
	}
	created, err := s.records.Create(ctx, rec)
	if err != nil {
		return "", newError(ErrorStoreFailure, "crm_write_error", err)
	}
	if err := s.records.ExportSheetsRow(ctx, created); err != nil {
		return "", newError(ErrorStoreFailure, "sheets_write_error", err)
	}
	s.logger.Info("form submitted", "recordId", created.ID, "type", created.Type)
	return created.ID, nil
}

// SendNotification composes the notification, records it, and emits a
// notification-sent event. Publish failures are logged, never surfaced.
func (s *Service) SendNotification(ctx context.Context, in notify.Input) (domain.NotificationRecord, error) {
	if strings.TrimSpace(in.Type) == "" {
		return domain.NotificationRecord{}, newError(ErrorInvalidInput, "missing_notification_type", nil)
	}
	rec, err := s.notifier.Send(ctx, in)
	if err != nil {
		return domain.NotificationRecord{}, newError(ErrorStoreFailure, "notification_write_error", err)
	}
	if err := s.publisher.Publish(ctx, "notification.sent", events.NewEnvelope(events.NotificationSent, rec)); err != nil {
		s.logger.Warn("notification event publish failed", "notificationId", rec.ID, "error", err)
	}
	s.logger.Info("notification sent", "type", rec.Type, "recipient", rec.RecipientEmail)
	return rec, nil
}

// Conversations returns the full turn history of a session, ascending.
func (s *Service) Conversations(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, newError(ErrorInvalidInput, "empty_session_id", nil)
	}
	turns, err := s.log.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, newError(ErrorStoreFailure, "conversation_read_error", err)
	}
	return turns, nil
}

// Records returns up to limit records of one type, newest first, plus the
// pre-truncation total. Zero values fall back to the appointment type and
// a limit of ten.
func (s *Service) Records(ctx context.Context, recordType string, limit int) ([]domain.Record, int, error) {
	if strings.TrimSpace(recordType) == "" {
		recordType = defaultRecordType
	}
	if limit <= 0 {
		limit = defaultRecordLimit
	}
	records, total, err := s.records.ListByType(ctx, recordType, limit)
	if err != nil {
		return nil, 0, newError(ErrorStoreFailure, "crm_read_error", err)
	}
	return records, total, nil
}
