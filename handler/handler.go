// Package handler exposes the receptionist service over HTTP and, via the
// Lambda adapter, over API Gateway proxy events.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"receptionist-agent/internal/domain"
	"receptionist-agent/internal/notify"
	"receptionist-agent/internal/usecase"
)

const serviceName = "AI Receptionist Backend"

// ReceptionistService is the application surface consumed by the gateway.
type ReceptionistService interface {
	Transcribe(ctx context.Context, audioData string) (usecase.TranscribeOutput, error)
	ProcessConversation(ctx context.Context, in usecase.ProcessInput) (usecase.ProcessOutput, error)
	SubmitForm(ctx context.Context, rec domain.Record) (string, error)
	SendNotification(ctx context.Context, in notify.Input) (domain.NotificationRecord, error)
	Conversations(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error)
	Records(ctx context.Context, recordType string, limit int) ([]domain.Record, int, error)
}

// Handler binds the routing table to a service instance.
type Handler struct {
	svc    ReceptionistService
	token  string
	logger *slog.Logger
}

// NewHandler validates dependencies and builds a Handler.
func NewHandler(svc ReceptionistService, token string, logger *slog.Logger) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: service must not be nil")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("handler: bearer token must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, token: token, logger: logger}, nil
}

// Router returns the fully wired http.Handler: pattern routes behind CORS,
// request logging and bearer auth. Health is exempt from auth because it
// doubles as the client's reachability probe.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /transcribe", h.handleTranscribe)
	mux.HandleFunc("POST /process-conversation", h.handleProcessConversation)
	mux.HandleFunc("POST /submit-form", h.handleSubmitForm)
	mux.HandleFunc("POST /send-notification", h.handleSendNotification)
	mux.HandleFunc("GET /conversations/{sessionId}", h.handleConversations)
	mux.HandleFunc("GET /crm-records", h.handleRecords)

	return WithCORS(withRequestLogging(h.logger, withBearerAuth(h.token, mux)))
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type transcribeRequest struct {
	AudioData string `json:"audioData"`
}

type transcribeResponse struct {
	Success       bool    `json:"success"`
	Transcription string  `json:"transcription"`
	Confidence    float64 `json:"confidence"`
}

type processConversationRequest struct {
	Message      string               `json:"message"`
	SessionID    string               `json:"sessionId"`
	CustomerInfo *domain.CustomerInfo `json:"customerInfo"`
}

type processConversationResponse struct {
	Success    bool           `json:"success"`
	Response   string         `json:"response"`
	Action     string         `json:"action,omitempty"`
	FormData   *domain.Record `json:"formData,omitempty"`
	Confidence float64        `json:"confidence"`
}

type submitFormResponse struct {
	Success  bool   `json:"success"`
	RecordID string `json:"recordId"`
	Message  string `json:"message"`
}

type sendNotificationRequest struct {
	Type           string         `json:"type"`
	RecipientEmail string         `json:"recipientEmail"`
	RecipientPhone string         `json:"recipientPhone"`
	Data           map[string]any `json:"data"`
}

type sendNotificationResponse struct {
	Success        bool   `json:"success"`
	NotificationID string `json:"notificationId"`
	Message        string `json:"message"`
}

type conversationsResponse struct {
	Success       bool                      `json:"success"`
	Conversations []domain.ConversationTurn `json:"conversations"`
	SessionID     string                    `json:"sessionId"`
}

type recordsResponse struct {
	Success bool            `json:"success"`
	Records []domain.Record `json:"records"`
	Total   int             `json:"total"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   serviceName,
	})
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "Transcription failed", err)
		return
	}
	out, err := h.svc.Transcribe(r.Context(), req.AudioData)
	if err != nil {
		h.fail(w, "Transcription failed", err)
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{
		Success:       true,
		Transcription: out.Transcription,
		Confidence:    out.Confidence,
	})
}

func (h *Handler) handleProcessConversation(w http.ResponseWriter, r *http.Request) {
	var req processConversationRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "Failed to process conversation", err)
		return
	}
	out, err := h.svc.ProcessConversation(r.Context(), usecase.ProcessInput{
		Message:      req.Message,
		SessionID:    req.SessionID,
		CustomerInfo: req.CustomerInfo,
	})
	if err != nil {
		h.fail(w, "Failed to process conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, processConversationResponse{
		Success:    true,
		Response:   out.Response,
		Action:     out.Action,
		FormData:   out.FormData,
		Confidence: out.Confidence,
	})
}

func (h *Handler) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	var rec domain.Record
	if err := decodeBody(r, &rec); err != nil {
		h.fail(w, "Failed to submit form", err)
		return
	}
	id, err := h.svc.SubmitForm(r.Context(), rec)
	if err != nil {
		h.fail(w, "Failed to submit form", err)
		return
	}
	writeJSON(w, http.StatusOK, submitFormResponse{
		Success:  true,
		RecordID: id,
		Message:  "Form submitted and stored in CRM",
	})
}

func (h *Handler) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "Failed to send notification", err)
		return
	}
	rec, err := h.svc.SendNotification(r.Context(), notify.Input{
		Type:           req.Type,
		RecipientEmail: req.RecipientEmail,
		RecipientPhone: req.RecipientPhone,
		Data:           req.Data,
	})
	if err != nil {
		h.fail(w, "Failed to send notification", err)
		return
	}
	writeJSON(w, http.StatusOK, sendNotificationResponse{
		Success:        true,
		NotificationID: rec.ID,
		Message:        "Notification sent successfully",
	})
}

func (h *Handler) handleConversations(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	turns, err := h.svc.Conversations(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "Failed to fetch conversations", err)
		return
	}
	if turns == nil {
		turns = []domain.ConversationTurn{}
	}
	writeJSON(w, http.StatusOK, conversationsResponse{
		Success:       true,
		Conversations: turns,
		SessionID:     sessionID,
	})
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	recordType := r.URL.Query().Get("type")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, "Failed to fetch CRM records", err)
			return
		}
		limit = n
	}
	records, total, err := h.svc.Records(r.Context(), recordType, limit)
	if err != nil {
		h.fail(w, "Failed to fetch CRM records", err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{
		Success: true,
		Records: records,
		Total:   total,
	})
}

// fail reports a processing failure. Every error surfaces as a 5xx with a
// generic message; details go to the log only.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: message})
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
