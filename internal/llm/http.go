package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tasktalk/internal/reliability"
)

// HTTPClassifier forwards commands to a Gemini-style generateContent
// endpoint. The response is returned verbatim; decoding and validating the
// model's claims is the interpreter's job.
type HTTPClassifier struct {
	url        string
	apiKey     string
	maxRetries int
	client     *http.Client

	// sleep is swapped in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

func NewHTTPClassifier(url, apiKey string, timeout time.Duration, maxRetries int) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPClassifier{
		url:        strings.TrimSpace(url),
		apiKey:     strings.TrimSpace(apiKey),
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: timeout},
		sleep:      time.Sleep,
	}
}

func newHTTPFromConfig(cfg Config) (*HTTPClassifier, error) {
	return NewHTTPClassifier(cfg.HTTPURL, cfg.APIKey, cfg.Timeout, cfg.MaxRetries), nil
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, promptContext, userText string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: promptContext}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: userText}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
			c.sleep(reliability.Backoff(attempt-1, 250*time.Millisecond, 5*time.Second))
		}

		text, retryable, err := c.doOnce(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

func (c *HTTPClassifier) doOnce(ctx context.Context, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", reliability.RetryableStatus(res.StatusCode),
			fmt.Errorf("llm http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Some deployments answer with the raw model text instead of the
		// candidate envelope. Pass it through; the validator decides.
		text := strings.TrimSpace(string(body))
		if text == "" {
			return "", false, fmt.Errorf("decode response: %w", err)
		}
		return text, false, nil
	}

	var out strings.Builder
	for _, cand := range decoded.Candidates {
		for _, p := range cand.Content.Parts {
			out.WriteString(p.Text)
		}
	}
	return out.String(), false, nil
}
