package transcribe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Result is a finished transcription.
type Result struct {
	Language            string
	LanguageProbability float64
	Duration            float64
	Text                string
	Segments            []Segment
	VAD                 *VADInfo
}

// Segment is one timed span of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// VADInfo is the voice activity summary reported by VAD-enabled services.
type VADInfo struct {
	HasSpeech        bool    `json:"has_speech"`
	TotalDurationMS  float64 `json:"total_duration_ms"`
	SpeechDurationMS float64 `json:"speech_duration_ms"`
	Segments         int     `json:"segments"`
	Error            string  `json:"error,omitempty"`
}

// Health is the service self-description returned by GET /health.
type Health struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Model       string `json:"model"`
	Device      string `json:"device"`
	ComputeType string `json:"compute_type"`
}

// apiResponse is the raw /transcribe body.
type apiResponse struct {
	Status              string    `json:"status"`
	Language            string    `json:"language"`
	LanguageProbability flexFloat `json:"language_probability"`
	Duration            flexFloat `json:"duration"`
	FullText            string    `json:"full_text"`
	Segments            []Segment `json:"segments"`
	VADInfo             *VADInfo  `json:"vad_info"`
	Error               string    `json:"error"`
}

func (r apiResponse) toResult() *Result {
	return &Result{
		Language:            r.Language,
		LanguageProbability: float64(r.LanguageProbability),
		Duration:            float64(r.Duration),
		Text:                r.FullText,
		Segments:            r.Segments,
		VAD:                 r.VADInfo,
	}
}

// flexFloat accepts both 12.5 and "12.50"; some service builds format
// numbers as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse numeric string %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
