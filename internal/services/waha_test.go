package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeChatID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "phone number without country code",
			input:    "0912345678",
			expected: "84912345678@c.us",
		},
		{
			name:     "phone number with country code",
			input:    "84912345678",
			expected: "84912345678@c.us",
		},
		{
			name:     "group id",
			input:    "120363407813232111@g.us",
			expected: "120363407813232111@g.us",
		},
		{
			name:     "phone number without country code, with suffix",
			input:    "0912345678@c.us",
			expected: "84912345678@c.us",
		},
		{
			name:     "formatted international number",
			input:    "+84 912-345-678",
			expected: "84912345678@c.us",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeChatID(tt.input, "84"))
		})
	}
}

func TestWahaSendMessage(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		text  string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "84912345678@c.us", body["chatId"])
		if r.URL.Path == "/api/sendText" {
			text = body["text"]
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	svc := NewWahaService(server.URL, "secret", "84")
	svc.pacing = [3]time.Duration{}

	require.NoError(t, svc.SendMessage(context.Background(), "0912345678", "hello"))
	assert.Equal(t, []string{"/api/sendSeen", "/api/startTyping", "/api/stopTyping", "/api/sendText"}, paths)
	assert.Equal(t, "hello", text)
}

func TestWahaSendMessageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not started", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	svc := NewWahaService(server.URL, "", "84")
	err := svc.SendMessage(context.Background(), "0912345678", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}
