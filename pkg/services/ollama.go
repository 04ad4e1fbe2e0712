package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"mindmemos/pkg/config"
)

// OllamaService talks to a local Ollama server for the AI companion and for
// search keyword extraction.
type OllamaService struct {
	baseURL string
	model   string
	enabled bool
}

var ErrOllamaDisabled = errors.New("ollama is disabled via config")

func NewOllamaService() *OllamaService {
	return &OllamaService{
		baseURL: config.OllamaBaseURL,
		model:   config.OllamaModel,
		enabled: config.IsOllamaEnabled,
	}
}

const companionSystemPrompt = `You are the MindMemos AI Companion, a supportive peer support assistant for a mental health journaling app.

Your role:
- Provide empathetic, supportive responses to users sharing their mental health experiences
- Use warm, compassionate, non-clinical language
- Help users feel heard and validated
- Suggest healthy coping strategies when appropriate
- Reference the similar experiences shared by other MindMemos users when relevant

IMPORTANT SAFETY RULES:
- You are NOT a licensed mental health professional
- You CANNOT provide medical diagnosis or treatment
- You MUST NOT give advice about self-harm or harmful behavior
- Always remind users that this is peer support, not professional care
- If someone appears to be in crisis, gently encourage them to contact a professional or crisis line

Always end your responses with a gentle reminder about seeking professional help when needed.`

const searchSystemPrompt = `You are a search query assistant for a mental health journaling app called MindMemos.

When a user types a search query (like "anxiety", "panic at night", "stress", "breakup", etc.), your job is to generate 3-7 relevant search keywords or tags that can be used to find related posts.

Rules:
- Output ONLY a comma-separated list of keywords
- Use lowercase
- Focus on mental health topics, emotions, situations
- Include synonyms and related concepts
- NO explanations, NO personal data, NO sentences - just keywords

Output format: word1, word2, word3, word4`

// AskCompanion sends the user's question to Ollama together with a community
// context block and returns the supportive answer.
func (s *OllamaService) AskCompanion(ctx context.Context, question, communityContext string) (string, error) {
	if !s.enabled {
		log.Printf("[ollama] disabled via config (IsOllamaEnabled=false)")
		return "", ErrOllamaDisabled
	}

	userContent := fmt.Sprintf("Context from MindMemos community:\n%s\n\nUser's question: %s", communityContext, question)

	answer, err := s.callChat(ctx, companionSystemPrompt, userContent, 60*time.Second)
	if err != nil && isRetriable(err) {
		sleepWithContext(ctx, 2*time.Second)
		answer, err = s.callChat(ctx, companionSystemPrompt, userContent, 60*time.Second)
	}
	if err != nil {
		log.Printf("[ollama] companion request failed: %v", err)
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// SearchKeywords expands a search query into topical keywords. It never
// fails: on any error the query itself is split into words instead.
func (s *OllamaService) SearchKeywords(ctx context.Context, query string) []string {
	fallback := splitQueryWords(query)
	if !s.enabled {
		return fallback
	}

	content, err := s.callChat(ctx, searchSystemPrompt, query, 15*time.Second)
	if err != nil {
		log.Printf("[ollama] keyword extraction failed: %v", err)
		return fallback
	}

	keywords := parseKeywordList(content)
	if len(keywords) == 0 {
		return fallback
	}

	// keep original query words too, dedup, cap at 10
	return mergeKeywords(keywords, fallback, 10)
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Error   string            `json:"error"`
}

func (s *OllamaService) callChat(ctx context.Context, system, user string, timeout time.Duration) (string, error) {
	reqBody := ollamaChatRequest{
		Model: s.model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out ollamaChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("ollama bad response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}
	if strings.TrimSpace(out.Message.Content) == "" {
		return "", errors.New("ollama returned no message content")
	}
	return out.Message.Content, nil
}

// parseKeywordList turns a comma-separated model reply into clean keywords.
func parseKeywordList(content string) []string {
	parts := strings.Split(strings.TrimSpace(content), ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		kw := strings.ToLower(strings.TrimSpace(p))
		if kw != "" && len(kw) < 50 {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

func splitQueryWords(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

func mergeKeywords(primary, extra []string, max int) []string {
	seen := make(map[string]struct{}, len(primary)+len(extra))
	out := make([]string, 0, max)
	for _, kw := range append(append([]string(nil), primary...), extra...) {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
		if len(out) == max {
			break
		}
	}
	return out
}

func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	e := strings.ToLower(err.Error())
	if strings.Contains(e, "status 503") || strings.Contains(e, "unavailable") {
		return true
	}
	if strings.Contains(e, "status 429") || strings.Contains(e, "overloaded") {
		return true
	}
	return false
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
