// Package openaiclient talks to an OpenAI-compatible inference server:
// chat completions for the judgment stages and embeddings for statute
// retrieval. Any backend exposing the same wire surface works.
package openaiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/medscreen/adscreen/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	chatModel  string
	embedModel string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, apiKey, chatModel, embedModel string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		chatModel:  chatModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		exec:       exec,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete runs a free-text chat completion.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, prompt, nil, "chat_completion")
}

// CompleteJSON asks the model for a JSON object answer. Backends that
// ignore response_format still tend to answer with a fenced block, which
// the caller's parser handles.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, prompt, &responseFormat{Type: "json_object"}, "chat_completion_json")
}

func (c *Client) chat(ctx context.Context, prompt string, format *responseFormat, operation string) (string, error) {
	request := chatRequest{
		Model:          c.chatModel,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    0.1,
		ResponseFormat: format,
	}

	var response chatResponse
	err := c.execute(ctx, operation, func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", request, &response, operation)
	})
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices", operation)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := embedRequest{Model: c.embedModel, Input: texts}

	var response embedResponse
	err := c.execute(ctx, "embed", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/embeddings", request, &response, "embed")
	})
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for _, item := range response.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embed: index %d out of range for %d inputs", item.Index, len(texts))
		}
		vectors[item.Index] = item.Embedding
	}
	for i, vector := range vectors {
		if vector == nil {
			return nil, fmt.Errorf("embed: missing vector for input %d", i)
		}
	}
	return vectors, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.exec == nil {
		return wrapTemporaryIfNeeded(operation, fn(ctx))
	}
	err := c.exec.Execute(ctx, operation, fn, classifyProviderError)
	return wrapTemporaryIfNeeded(operation, err)
}
