package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/parishrama/diagnostic-api/internal/models"
)

const (
	DefaultTextbeltURL = "https://textbelt.com/text"
	smsTimeout         = 5 * time.Second
)

// Notifier tells a patient that their appointment was booked. Failures are
// logged by the implementation and never reach the caller.
type Notifier interface {
	AppointmentBooked(ctx context.Context, apt *models.Appointment)
}

// NopNotifier is used when no SMS provider is configured.
type NopNotifier struct{}

func (NopNotifier) AppointmentBooked(context.Context, *models.Appointment) {}

// TextbeltNotifier sends confirmation SMS through the Textbelt HTTP API.
type TextbeltNotifier struct {
	apiKey string
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewNotifier returns a Textbelt notifier, or NopNotifier when apiKey is
// empty.
func NewNotifier(apiKey, url string, log *zap.Logger) Notifier {
	if apiKey == "" {
		return NopNotifier{}
	}
	if url == "" {
		url = DefaultTextbeltURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TextbeltNotifier{
		apiKey: apiKey,
		url:    url,
		client: &http.Client{Timeout: smsTimeout},
		log:    log,
	}
}

// ConfirmationMessage is the SMS body for a booked appointment.
func ConfirmationMessage(apt *models.Appointment) string {
	return fmt.Sprintf(
		"Appointment Confirmed: %s for %s on %s at %s.",
		apt.Service,
		apt.Name,
		apt.Date.Format("Jan 2, 2006"),
		apt.Time,
	)
}

type textbeltRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Key     string `json:"key"`
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	TextID  string `json:"textId"`
}

// AppointmentBooked sends the SMS synchronously, bounded by smsTimeout.
func (s *TextbeltNotifier) AppointmentBooked(ctx context.Context, apt *models.Appointment) {
	if apt.Phone == "" {
		s.log.Debug("sms skipped: no phone number", zap.String("appointment", apt.ID.Hex()))
		return
	}
	if err := s.send(ctx, apt.Phone, ConfirmationMessage(apt)); err != nil {
		s.log.Warn("sms not sent", zap.String("appointment", apt.ID.Hex()), zap.Error(err))
		return
	}
	s.log.Info("sms sent", zap.String("appointment", apt.ID.Hex()))
}

func (s *TextbeltNotifier) send(ctx context.Context, phone, message string) error {
	ctx, cancel := context.WithTimeout(ctx, smsTimeout)
	defer cancel()

	payload, err := json.Marshal(textbeltRequest{Phone: phone, Message: message, Key: s.apiKey})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected message: %s", result.Error)
	}
	return nil
}
