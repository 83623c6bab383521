package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WahaService sends WhatsApp messages through a WAHA HTTP API instance
type WahaService struct {
	baseURL     string
	apiKey      string
	countryCode string
	session     string
	client      *http.Client
	// pauses between seen, typing and send so messages look hand-typed
	pacing [3]time.Duration
}

func NewWahaService(baseURL, apiKey, countryCode string) *WahaService {
	return &WahaService{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		countryCode: countryCode,
		session:     "default",
		client:      &http.Client{Timeout: 15 * time.Second},
		pacing:      [3]time.Duration{100 * time.Millisecond, 150 * time.Millisecond, 50 * time.Millisecond},
	}
}

func (s *WahaService) post(ctx context.Context, endpoint string, payload map[string]string) error {
	payload["session"] = s.session
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s failed with status %d: %s", endpoint, resp.StatusCode, string(body))
	}
	return nil
}

// NormalizeChatID turns a phone number or chat id into a WAHA chat id.
// Local numbers with a leading 0 get countryCode; group ids pass through.
func NormalizeChatID(chatID, countryCode string) string {
	chatID = strings.TrimSpace(chatID)

	if strings.HasSuffix(chatID, "@g.us") {
		return chatID
	}

	chatID = strings.TrimSuffix(chatID, "@c.us")
	chatID = strings.NewReplacer(" ", "", "-", "", "+", "", "(", "", ")", "").Replace(chatID)

	if strings.HasPrefix(chatID, "0") && countryCode != "" {
		chatID = countryCode + strings.TrimPrefix(chatID, "0")
	}

	return chatID + "@c.us"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SendMessage marks the chat seen, types for a moment and sends text
func (s *WahaService) SendMessage(ctx context.Context, chatID, text string) error {
	chatID = NormalizeChatID(chatID, s.countryCode)

	steps := []struct {
		endpoint string
		payload  map[string]string
		pause    time.Duration
	}{
		{"/api/sendSeen", map[string]string{"chatId": chatID}, s.pacing[0]},
		{"/api/startTyping", map[string]string{"chatId": chatID}, s.pacing[1]},
		{"/api/stopTyping", map[string]string{"chatId": chatID}, s.pacing[2]},
		{"/api/sendText", map[string]string{"chatId": chatID, "text": text}, 0},
	}

	for _, step := range steps {
		if err := s.post(ctx, step.endpoint, step.payload); err != nil {
			return err
		}
		if err := sleepCtx(ctx, step.pause); err != nil {
			return err
		}
	}
	return nil
}
