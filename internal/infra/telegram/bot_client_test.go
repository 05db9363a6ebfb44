package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"folio/config"
	"folio/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(apiBase string) *botClient {
	cfg := &config.Config{Telegram: &config.TelegramConfig{APIBase: apiBase + "/", Timeout: time.Second}}

	return NewBotClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).(*botClient)
}

func TestBotClient_SendMessage(t *testing.T) {
	var (
		gotPath string
		gotBody sendMessageRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.SendMessage(context.Background(), "123:ABC", "987654", "hello")
	require.NoError(t, err)

	assert.Equal(t, "/bot123:ABC/sendMessage", gotPath)
	assert.Equal(t, "987654", gotBody.ChatID)
	assert.Equal(t, "hello", gotBody.Text)
}

func TestBotClient_SendMessage_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendMessage(context.Background(), "123:ABC", "1", "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "chat not found")
}

func TestBotClient_SendMessage_MissingCredentials(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")

	assert.Error(t, client.SendMessage(context.Background(), "", "1", "hello"))
	assert.Error(t, client.SendMessage(context.Background(), "123:ABC", "", "hello"))
}

func TestBotClient_SendMessage_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := newTestClient(srv.URL).SendMessage(context.Background(), "123:SECRET", "1", "hello")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "123:SECRET")
}
