// Package llm defines the language model completion contract shared by the
// provider adapters in its subpackages.
package llm

import (
	"context"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/heartmarshall/voicedoc-backend/internal/retry"
)

// Request is a single-turn completion request.
type Request struct {
	System string
	Prompt string

	// SchemaName and Schema describe the expected JSON output. Providers that
	// support structured output enforce it; others only see the prompt.
	SchemaName string
	Schema     *jsonschema.Schema
}

// Completer returns the raw text of a model completion.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClassifyStatus wraps err as permanent for client errors other than 429.
// Rate limiting and server errors stay retryable.
func ClassifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests, status >= 500:
		return err
	case status >= 400:
		return retry.Permanent(err)
	}
	return err
}
