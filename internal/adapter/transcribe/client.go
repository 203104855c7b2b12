// Package transcribe is the HTTP client for the whisper transcription service.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/voicedoc-backend/internal/config"
	"github.com/heartmarshall/voicedoc-backend/internal/retry"
)

// DefaultJapaneseMedicalPrompt biases recognition toward nursing vocabulary.
const DefaultJapaneseMedicalPrompt = "医療記録、バイタルサイン、看護評価、血圧、脈拍、体温、患者"

// ErrNoSpeech is returned when the service found no speech in the audio.
var ErrNoSpeech = errors.New("no speech detected")

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client talks to POST /transcribe and GET /health.
type Client struct {
	baseURL    string
	language   string
	prompt     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client from the transcription config. Per-call
// deadlines come from the caller's context.
func NewClient(cfg config.TranscriptionConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		prompt:     cfg.InitialPrompt,
		httpClient: &http.Client{},
		log:        logger.With("adapter", "transcribe"),
	}
}

// Transcribe uploads audio and returns the transcript.
//
// Errors wrapped with retry.Permanent: an undecodable body and an empty
// transcript (ErrNoSpeech). Everything else, including status "error" in a
// 200 body, is transient.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (*Result, error) {
	body, contentType, err := c.buildForm(audio, filename)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("transcribe: build form: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", body)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("transcribe: create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcribe: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("transcribe: unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, retry.Permanent(fmt.Errorf("transcribe: decode json: %w", err))
	}

	if raw.Status == "error" {
		return nil, fmt.Errorf("transcribe: service error: %s", raw.Error)
	}

	result := raw.toResult()
	if strings.TrimSpace(result.Text) == "" {
		return nil, retry.Permanent(ErrNoSpeech)
	}

	c.log.DebugContext(ctx, "transcription completed",
		slog.String("language", result.Language),
		slog.Float64("duration", result.Duration),
		slog.Int("segments", len(result.Segments)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (c *Client) buildForm(audio io.Reader, filename string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, "", err
	}

	language := c.language
	if language == "" {
		language = "ja"
	}
	if err := w.WriteField("language", language); err != nil {
		return nil, "", err
	}

	prompt := c.prompt
	if prompt == "" && language == "ja" {
		prompt = DefaultJapaneseMedicalPrompt
	}
	if prompt != "" {
		if err := w.WriteField("initial_prompt", prompt); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("transcribe: create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcribe: health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcribe: health status %d", resp.StatusCode)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("transcribe: decode health: %w", err)
	}
	return &h, nil
}
