package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const chatTimeout = 60 * time.Second

// ErrNoAnswer is returned when the model cannot be reached or answers nothing.
var ErrNoAnswer = errors.New("no answer from model")

type ChatConfig struct {
	APIKey  string
	URL     string
	Model   string
	Referer string
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenRouter is a chat-completions client.
type OpenRouter struct {
	http *resty.Client
	cfg  ChatConfig
}

func NewOpenRouter(cfg ChatConfig) *OpenRouter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = chatTimeout
	}
	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "Life360 Dashboard Ask AI")
	if cfg.Referer != "" {
		rc.SetHeader("HTTP-Referer", cfg.Referer)
	}
	return &OpenRouter{http: rc, cfg: cfg}
}

func (o *OpenRouter) Complete(ctx context.Context, system, user string) (string, error) {
	if o.cfg.APIKey == "" || o.cfg.URL == "" {
		return "", fmt.Errorf("%w: OPENROUTER_API_KEY not set", ErrNoAnswer)
	}
	var out chatResponse
	resp, err := o.http.R().
		SetContext(ctx).
		SetAuthToken(o.cfg.APIKey).
		SetBody(chatRequest{
			Model: o.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
		}).
		SetResult(&out).
		Post(o.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoAnswer, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", ErrNoAnswer, resp.StatusCode())
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrNoAnswer
	}
	return out.Choices[0].Message.Content, nil
}
