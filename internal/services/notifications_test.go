package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/parishrama/diagnostic-api/internal/models"
)

func appointment() *models.Appointment {
	return &models.Appointment{
		Name:    "Jane Doe",
		Phone:   "+15555550100",
		Date:    time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Time:    "10:00",
		Service: "Blood Test",
	}
}

func TestNewNotifierWithoutKey(t *testing.T) {
	assert.IsType(t, NopNotifier{}, NewNotifier("", "", nil))
	assert.IsType(t, &TextbeltNotifier{}, NewNotifier("key", "", nil))
}

func TestConfirmationMessage(t *testing.T) {
	assert.Equal(t,
		"Appointment Confirmed: Blood Test for Jane Doe on Jun 10, 2024 at 10:00.",
		ConfirmationMessage(appointment()))
}

func TestTextbeltNotifierSends(t *testing.T) {
	var got textbeltRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(textbeltResponse{Success: true, TextID: "1"})
	}))
	defer srv.Close()

	core, logs := observer.New(zap.InfoLevel)
	n := NewNotifier("key", srv.URL, zap.New(core))
	n.AppointmentBooked(context.Background(), appointment())

	assert.Equal(t, "+15555550100", got.Phone)
	assert.Equal(t, "key", got.Key)
	assert.Contains(t, got.Message, "Blood Test")
	assert.Equal(t, 1, logs.FilterMessage("sms sent").Len())
}

func TestTextbeltNotifierLogsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textbeltResponse{Success: false, Error: "Out of quota"})
	}))
	defer srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	n := NewNotifier("key", srv.URL, zap.New(core))
	n.AppointmentBooked(context.Background(), appointment())
	require.Equal(t, 1, logs.FilterMessage("sms not sent").Len())

	apt := appointment()
	apt.Phone = ""
	n.AppointmentBooked(context.Background(), apt)
	assert.Equal(t, 1, logs.FilterMessage("sms skipped: no phone number").Len())
}
