package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lonepengu/backend/internal/config"
)

// placeholderKey is the shipped default; running with it (or no key at all)
// puts the proxy in demo mode, where every request is answered locally.
const placeholderKey = "xai-grok-beta-key-placeholder"

// AIProxyService forwards client requests to the upstream OpenAI-compatible
// API so the key never ships to devices. It is stateless; when the key is
// missing or the upstream fails, it degrades to a demo response rather than
// surfacing an error to the client.
type AIProxyService struct {
	cfg    *config.Config
	client *http.Client
}

func NewAIProxyService(cfg *config.Config) *AIProxyService {
	return &AIProxyService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Proxy forwards body to the upstream endpoint and returns the raw JSON
// response. It never returns an error for upstream failures.
func (s *AIProxyService) Proxy(ctx context.Context, endpoint string, body map[string]interface{}) (json.RawMessage, error) {
	if s.cfg.AIAPIKey == "" || s.cfg.AIAPIKey == placeholderKey {
		log.Printf("[ai.Proxy] no API key configured, serving demo response for %s", endpoint)
		return demoResponse(endpoint, body), nil
	}

	// The upstream rejects unsupported parameters instead of ignoring them.
	delete(body, "size")

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.AIBaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.AIAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("ERROR [ai.Proxy] upstream request failed: %v", err)
		return demoResponse(endpoint, body), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("ERROR [ai.Proxy] reading upstream response: %v", err)
		return demoResponse(endpoint, body), nil
	}

	if resp.StatusCode >= 400 {
		log.Printf("ERROR [ai.Proxy] upstream returned %d, falling back to demo response", resp.StatusCode)
		return demoResponse(endpoint, body), nil
	}

	return data, nil
}

func demoResponse(endpoint string, body map[string]interface{}) json.RawMessage {
	prompt := extractPrompt(body)

	if strings.Contains(endpoint, "/chat/completions") {
		return chatDemoResponse(prompt)
	}
	if strings.Contains(endpoint, "/images") {
		return mustJSON(map[string]interface{}{
			"data": []map[string]string{
				{"url": "https://placehold.co/1024x1024/1a1a2e/ffffff?text=Demo+Image"},
			},
		})
	}

	return mustJSON(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": "Demo mode response."}},
		},
	})
}

func chatDemoResponse(prompt string) json.RawMessage {
	lower := strings.ToLower(prompt)

	var content string
	switch {
	case strings.Contains(lower, "intent"):
		content = mustString(map[string]string{
			"subject":     "Innovation",
			"style":       "Modern",
			"emotion":     "Inspirational",
			"contentIdea": "Breaking the boundaries of creativity.",
			"imagePrompt": "A futuristic crystalline structure glowing in a void",
			"videoPrompt": "Slow camera orbit around a glowing crystal",
		})
	case strings.Contains(lower, "caption"):
		content = mustString(map[string]interface{}{
			"captions": []map[string]string{
				{"label": "Hook", "description": "Minimalist", "caption": "Simplicity is the ultimate sophistication."},
				{"label": "Story", "description": "Engaging", "caption": "Every detail matters when you're building the future."},
				{"label": "Punchy", "description": "Short", "caption": "Modern. Minimal. Masterful."},
			},
		})
	default:
		content = "Here's a demo response. Configure an API key for live results."
	}

	return mustJSON(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
}

func extractPrompt(body map[string]interface{}) string {
	if p, ok := body["prompt"].(string); ok {
		return p
	}
	messages, ok := body["messages"].([]interface{})
	if !ok || len(messages) == 0 {
		return ""
	}
	last, ok := messages[len(messages)-1].(map[string]interface{})
	if !ok {
		return ""
	}
	content, _ := last["content"].(string)
	return content
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshaling demo response: %v", err))
	}
	return data
}

func mustString(v interface{}) string {
	return string(mustJSON(v))
}
