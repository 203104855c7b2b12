//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/llm"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/voicedoc-backend/internal/app"
	"github.com/heartmarshall/voicedoc-backend/internal/auth"
	"github.com/heartmarshall/voicedoc-backend/internal/config"
	"github.com/heartmarshall/voicedoc-backend/internal/retry"
)

const (
	jwtSecret = "test-secret-at-least-32-chars-long!!"
	jwtIssuer = "voicedoc-e2e"
)

// ---------------------------------------------------------------------------
// testServer runs the real server process (HTTP, workers, sweep) against a
// PostgreSQL container, a fake whisper service and a scripted model.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Core   *app.Core
	jwt    *auth.Validator

	// transcript is what the fake whisper service returns.
	transcript atomic.Value
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// scriptedModel answers by schema name, the way a structured-output
// provider would.
type scriptedModel map[string]string

func (m scriptedModel) Complete(_ context.Context, req llm.Request) (string, error) {
	answer, ok := m[req.SchemaName]
	if !ok {
		return "", retry.Permanent(fmt.Errorf("unexpected request %q", req.SchemaName))
	}
	return answer, nil
}

var defaultModel = scriptedModel{
	"categorize":     `{"categories":[{"type":"vitals","confidence":0.92},{"type":"pain","confidence":0.2}]}`,
	"extract_vitals": `{"data":{"systolic_bp":128,"diastolic_bp":82}}`,
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func (ts *testServer) startWhisper(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcribe", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":               "success",
			"language":             "ja",
			"language_probability": 0.99,
			"duration":             12.5,
			"full_text":            ts.transcript.Load().(string),
		})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "model": "large-v3"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func testConfig(t *testing.T, whisperURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            freePort(t),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxUploadBytes:  1 << 20,
		},
		Database: config.DatabaseConfig{
			DSN:             testhelper.DSN(t),
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: time.Minute,
		},
		Auth: config.AuthConfig{JWTSecret: jwtSecret, JWTIssuer: jwtIssuer},
		Log:  config.LogConfig{Level: "debug", Format: "text"},
		Pipeline: config.PipelineConfig{
			Workers:               2,
			ExtractionConcurrency: 2,
			AcceptanceThreshold:   0.6,
			Aggregation:           "mean",
			TranscribeTimeout:     10 * time.Second,
			LLMTimeout:            10 * time.Second,
			AgingInterval:         time.Minute,
			MaxPriority:           10,
			StaleAfter:            24 * time.Hour,
			SweepInterval:         time.Hour,
			UrgentAfter:           24 * time.Hour,
		},
		Retry:         config.RetryConfig{MaxAttempts: 2, BaseDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond},
		Transcription: config.TranscriptionConfig{BaseURL: whisperURL, Language: "ja"},
		LLM:           config.LLMConfig{Provider: "anthropic", RPS: 100, Burst: 100},
		Storage:       config.StorageConfig{Backend: "local", LocalDir: t.TempDir()},
		Audit:         config.AuditConfig{HashAlgorithm: "sha256"},
		CORS:          config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,OPTIONS", AllowedHeaders: "Authorization,Content-Type"},
		RateLimit:     config.RateLimitConfig{UploadsPerMinute: 600, Burst: 100},
	}
}

// setupTestServer boots the full application and blocks until /live answers.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithModel(t, defaultModel)
}

func setupTestServerWithModel(t *testing.T, model llm.Completer) *testServer {
	t.Helper()

	ts := &testServer{jwt: auth.NewValidator(jwtSecret, jwtIssuer)}
	ts.transcript.Store("血圧は128の82です")

	cfg := testConfig(t, ts.startWhisper(t))
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, cancel := context.WithCancel(context.Background())

	core, err := app.OpenCore(ctx, cfg, logger)
	require.NoError(t, err)

	srv, err := app.NewServer(cfg, core, app.WithCompleter(model))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("server run: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("server did not stop")
		}
		core.Close()
	})

	ts.URL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	ts.Client = &http.Client{Timeout: 10 * time.Second}
	ts.Core = core

	require.Eventually(t, func() bool {
		resp, err := ts.Client.Get(ts.URL + "/live")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 20*time.Millisecond, "server did not become live")

	return ts
}

// newUser returns a fresh user ID with a valid access token.
func (ts *testServer) newUser(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	tok, err := ts.jwt.Issue(userID, 15*time.Minute)
	require.NoError(t, err)
	return userID, tok
}

// ---------------------------------------------------------------------------
// Request helpers.
// ---------------------------------------------------------------------------

func (ts *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result map[string]any
	if len(bytes.TrimSpace(raw)) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result), "body: %s", raw)
	}
	return resp.StatusCode, result
}

func (ts *testServer) getJSON(t *testing.T, path, token string) (int, map[string]any) {
	t.Helper()
	return ts.do(t, http.MethodGet, path, token, nil, "")
}

func (ts *testServer) postJSON(t *testing.T, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	return ts.do(t, http.MethodPost, path, token, r, "application/json")
}

// upload submits a global-context recording and returns its ID.
func (ts *testServer) upload(t *testing.T, token string) string {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", "note.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("RIFF....WAVEfmt "))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("context_kind", "global"))
	require.NoError(t, w.WriteField("duration", "12.5"))
	require.NoError(t, w.WriteField("captured_at", time.Now().UTC().Format(time.RFC3339)))
	require.NoError(t, w.Close())

	status, body := ts.do(t, http.MethodPost, "/v1/recordings", token, &buf, w.FormDataContentType())
	require.Equal(t, http.StatusAccepted, status, "body: %v", body)
	id, ok := body["id"].(string)
	require.True(t, ok, "expected id in %v", body)
	return id
}

// waitRecording polls until the recording reaches want.
func (ts *testServer) waitRecording(t *testing.T, token, id, want string) map[string]any {
	t.Helper()
	var last map[string]any
	require.Eventually(t, func() bool {
		_, last = ts.getJSON(t, "/v1/recordings/"+id, token)
		return last["status"] == want
	}, 15*time.Second, 50*time.Millisecond, "recording %s never reached %s", id, want)
	return last
}

// reviewFor returns the caller's pending review item for a recording.
func (ts *testServer) reviewFor(t *testing.T, token, recordingID string) map[string]any {
	t.Helper()
	status, body := ts.getJSON(t, "/v1/reviews", token)
	require.Equal(t, http.StatusOK, status)

	items, _ := body["items"].([]any)
	for _, it := range items {
		m := it.(map[string]any)
		if m["recording_id"] == recordingID {
			return m
		}
	}
	t.Fatalf("no review item for recording %s in %v", recordingID, body)
	return nil
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}
