package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if err := c.Pipeline.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Retry.validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	switch strings.ToLower(c.Audit.HashAlgorithm) {
	case "sha256", "sha3-256":
	default:
		return fmt.Errorf("audit.hash_algorithm must be sha256 or sha3-256 (got %q)", c.Audit.HashAlgorithm)
	}
	return nil
}

func (p *PipelineConfig) validate() error {
	if p.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", p.Workers)
	}
	if p.ExtractionConcurrency <= 0 {
		return fmt.Errorf("extraction_concurrency must be > 0 (got %d)", p.ExtractionConcurrency)
	}
	if p.AcceptanceThreshold < 0 || p.AcceptanceThreshold > 1 {
		return fmt.Errorf("acceptance_threshold must be within [0,1] (got %v)", p.AcceptanceThreshold)
	}
	switch p.Aggregation {
	case "mean", "weighted":
	default:
		return fmt.Errorf("aggregation must be mean or weighted (got %q)", p.Aggregation)
	}
	if p.StaleAfter <= 0 {
		return fmt.Errorf("stale_after must be > 0 (got %v)", p.StaleAfter)
	}
	if p.AgingInterval <= 0 {
		return fmt.Errorf("aging_interval must be > 0 (got %v)", p.AgingInterval)
	}
	return nil
}

func (r *RetryConfig) validate() error {
	if r.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be > 0 (got %d)", r.MaxAttempts)
	}
	if r.Jitter < 0 || r.Jitter > 1 {
		return fmt.Errorf("jitter must be within [0,1] (got %v)", r.Jitter)
	}
	if r.MaxDelay < r.BaseDelay {
		return fmt.Errorf("max_delay (%v) must be >= base_delay (%v)", r.MaxDelay, r.BaseDelay)
	}
	return nil
}

func (l *LLMConfig) validate() error {
	switch l.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("provider must be anthropic or openai (got %q)", l.Provider)
	}
	if l.RPS <= 0 {
		return fmt.Errorf("rps must be > 0 (got %v)", l.RPS)
	}
	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Backend {
	case "local":
		if s.LocalDir == "" {
			return fmt.Errorf("local_dir is required for the local backend")
		}
	case "s3":
		if s.Bucket == "" {
			return fmt.Errorf("bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("backend must be local or s3 (got %q)", s.Backend)
	}
	return nil
}
