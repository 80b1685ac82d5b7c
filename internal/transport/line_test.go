package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecg-notify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLinePush(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	c := NewLineClient(server.URL, "test-token", zap.NewNop())
	err := c.Push(context.Background(), "U1234567890abcdef1234567890abcdef",
		[]models.LineMessage{models.NewLineTextMessage("สวัสดี")})
	require.NoError(t, err)

	assert.Equal(t, "/v2/bot/message/push", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "U1234567890abcdef1234567890abcdef", gotBody["to"])

	messages := gotBody["messages"].([]interface{})
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "text", msg["type"])
	assert.Equal(t, "สวัสดี", msg["text"])
}

func TestLinePush_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid user ID"}`))
	}))
	defer server.Close()

	c := NewLineClient(server.URL, "test-token", zap.NewNop())
	err := c.Push(context.Background(), "Ubad", []models.LineMessage{models.NewLineTextMessage("x")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Invalid user ID")
}

func TestLinePush_NotConfigured(t *testing.T) {
	c := NewLineClient("https://api.line.me", "", zap.NewNop())
	assert.False(t, c.Configured())

	err := c.Push(context.Background(), "Uaaa", []models.LineMessage{models.NewLineTextMessage("x")})
	assert.Error(t, err)
}

func TestLinePush_MissingArgs(t *testing.T) {
	c := NewLineClient("https://api.line.me", "token", zap.NewNop())

	err := c.Push(context.Background(), "", []models.LineMessage{models.NewLineTextMessage("x")})
	assert.Error(t, err)

	err = c.Push(context.Background(), "Uaaa", nil)
	assert.Error(t, err)
}

func TestLineReply(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	c := NewLineClient(server.URL, "test-token", zap.NewNop())
	err := c.Reply(context.Background(), "reply-token-1",
		[]models.LineMessage{models.NewLineTextMessage("LINE User ID ของคุณคือ")})
	require.NoError(t, err)

	assert.Equal(t, "/v2/bot/message/reply", gotPath)
	assert.Equal(t, "reply-token-1", gotBody["replyToken"])
}
