package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

const aiPrompt = `Ты модератор отзывов фриланс-платформы. Оцени, насколько отзыв честный и допустимый к публикации.
Ответь только JSON вида {"score": число от 0 до 1, "flags": ["spam"|"offensive"|"fake"|"irrelevant"]}.`

// AIScorer оценивает отзыв через OpenAI-совместимый API (chat/completions).
type AIScorer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAIScorer создаёт экземпляр клиента. Ключ берётся из окружения.
func NewAIScorer(baseURL, model string) *AIScorer {
	apiKey := os.Getenv("BOTHUB_ACCESS_TOKEN")
	if apiKey == "" {
		apiKey = os.Getenv("AI_API_KEY")
	}

	return &AIScorer{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		// Верхняя граница; фактический лимит задаёт контекст вызывающего.
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AIScorer) Score(ctx context.Context, text string) (Assessment, error) {
	content, err := c.chatCompletion(ctx, []map[string]string{
		{"role": "system", "content": aiPrompt},
		{"role": "user", "content": text},
	})
	if err != nil {
		return Assessment{}, err
	}

	var parsed struct {
		Score *float64 `json:"score"`
		Flags []string `json:"flags"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil || parsed.Score == nil {
		return Assessment{}, fmt.Errorf("ai: не удалось разобрать оценку: %q", content)
	}

	return Assessment{Score: clamp(*parsed.Score), Flags: parsed.Flags}, nil
}

func (c *AIScorer) chatCompletion(ctx context.Context, messages []map[string]string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("ai: baseURL не задан")
	}

	payload := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  64,
		"temperature": 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := c.baseURL
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	url += "chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("ai: код ответа %d: %v", resp.StatusCode, errorBody)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("ai: пустой ответ")
	}

	return result.Choices[0].Message.Content, nil
}

var codeBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// extractJSON достаёт JSON объект из ответа, который может быть обёрнут в markdown.
func extractJSON(text string) string {
	if m := codeBlock.FindStringSubmatch(text); len(m) > 1 {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
