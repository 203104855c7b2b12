package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/llm"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/llm/anthropic"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/llm/openai"
	"github.com/heartmarshall/voicedoc-backend/internal/config"
)

// NewCompleter selects the model backend named in cfg.
func NewCompleter(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) (llm.Completer, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewClient(cfg, httpClient, logger), nil
	case "openai":
		return openai.NewClient(cfg, httpClient, logger), nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}
