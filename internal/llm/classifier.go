// Package llm bridges the interpreter with the upstream natural-language
// reasoning service. The service proposes an intent and a conversational
// response for each user command; everything it returns is treated as
// untrusted input by the interpreter.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Classifier asks the upstream model to classify one user command.
// promptContext carries the schema contract and reference date; userText is
// the raw command. The returned string is the model's raw output, which may
// be malformed in any way.
type Classifier interface {
	Classify(ctx context.Context, promptContext, userText string) (string, error)
}

// Config controls classifier construction.
type Config struct {
	Mode       string
	HTTPURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

func NewClassifier(cfg Config) (Classifier, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return newHTTPFromConfig(cfg)
		}
		return NewMockClassifier(), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("llm HTTP url is required for http mode")
		}
		return newHTTPFromConfig(cfg)
	case "mock":
		return NewMockClassifier(), nil
	default:
		return nil, fmt.Errorf("unsupported llm mode %q", cfg.Mode)
	}
}
