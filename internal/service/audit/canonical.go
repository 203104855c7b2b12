package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// canonicalEvent fixes the field set and order that goes into the hash.
// Adding a field here invalidates every existing hash.
type canonicalEvent struct {
	Type         string          `json:"type"`
	ActorID      *string         `json:"actor_id"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Before       json.RawMessage `json:"before"`
	After        json.RawMessage `json:"after"`
	CreatedAt    string          `json:"created_at"`
	ID           string          `json:"id"`
}

func canonical(ev domain.AuditEvent) ([]byte, error) {
	before, err := normalizeJSON(ev.Before)
	if err != nil {
		return nil, err
	}
	after, err := normalizeJSON(ev.After)
	if err != nil {
		return nil, err
	}

	ce := canonicalEvent{
		Type:         string(ev.Type),
		ResourceType: string(ev.ResourceType),
		ResourceID:   ev.ResourceID.String(),
		Before:       before,
		After:        after,
		CreatedAt:    ev.CreatedAt.UTC().Format(time.RFC3339Nano),
		ID:           ev.ID.String(),
	}
	if ev.ActorID != nil {
		s := ev.ActorID.String()
		ce.ActorID = &s
	}
	return json.Marshal(ce)
}

// normalizeJSON rewrites raw into Go's encoding of the same value: sorted
// keys, no insignificant whitespace, numbers through float64. jsonb storage
// reorders keys and reformats numbers, so both the append and the verify
// side hash this form.
func normalizeJSON(raw json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("normalize json: %w", err)
	}
	return json.Marshal(v)
}

type hasher struct {
	name string
	new  func() hash.Hash
}

func newHasher(algorithm string) (*hasher, error) {
	switch strings.ToLower(algorithm) {
	case "", "sha256":
		return &hasher{name: "sha256", new: sha256.New}, nil
	case "sha3-256":
		return &hasher{name: "sha3-256", new: sha3.New256}, nil
	}
	return nil, fmt.Errorf("audit: unsupported hash algorithm %q", algorithm)
}

// record returns hex(H(canonical(ev) || prevHash)).
func (h *hasher) record(ev domain.AuditEvent, prevHash string) (string, error) {
	c, err := canonical(ev)
	if err != nil {
		return "", err
	}
	d := h.new()
	d.Write(c)
	d.Write([]byte(prevHash))
	return hex.EncodeToString(d.Sum(nil)), nil
}
