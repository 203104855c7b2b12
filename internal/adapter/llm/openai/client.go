// Package openai implements llm.Completer on OpenAI chat completions with
// strict structured output.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/llm"
	"github.com/heartmarshall/voicedoc-backend/internal/config"
	"github.com/heartmarshall/voicedoc-backend/internal/retry"
)

// Client is an llm.Completer backed by the OpenAI API or any compatible
// endpoint reachable at cfg.BaseURL.
type Client struct {
	client    oai.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

func NewClient(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Client{
		client:    oai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		log:       logger.With("adapter", "openai"),
	}
}

// Complete implements llm.Completer. When req carries a schema the response
// is constrained to it through the json_schema response format.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	var messages []oai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, oai.SystemMessage(req.System))
	}
	messages = append(messages, oai.UserMessage(req.Prompt))

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(c.maxTokens)
	}
	if req.Schema != nil {
		params.ResponseFormat = oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &oai.ResponseFormatJSONSchemaParam{
				JSONSchema: oai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.SchemaName,
					Description: param.NewOpt(req.SchemaName + " output"),
					Schema:      req.Schema,
					Strict:      param.NewOpt(true),
				},
			},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", retry.Permanent(errors.New("openai: empty choices in response"))
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", retry.Permanent(fmt.Errorf("openai: refused: %s", choice.Message.Refusal))
	}
	if choice.Message.Content == "" {
		return "", retry.Permanent(fmt.Errorf("openai: empty content (finish reason %q)", choice.FinishReason))
	}

	c.log.DebugContext(ctx, "completion received",
		slog.String("model", c.model),
		slog.Int64("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return choice.Message.Content, nil
}

func (c *Client) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return llm.ClassifyStatus(apiErr.StatusCode, fmt.Errorf("openai: status %d: %w", apiErr.StatusCode, err))
	}
	return fmt.Errorf("openai: %w", err)
}
