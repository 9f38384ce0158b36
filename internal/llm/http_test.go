package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClassifier(url string, maxRetries int) *HTTPClassifier {
	c := NewHTTPClassifier(url, "test-key", 5*time.Second, maxRetries)
	c.sleep = func(time.Duration) {}
	return c
}

func TestHTTPClassifierParsesCandidateEnvelope(t *testing.T) {
	var gotKey, gotSystem, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.SystemInstruction != nil && len(req.SystemInstruction.Parts) > 0 {
			gotSystem = req.SystemInstruction.Parts[0].Text
		}
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotUser = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"action\":"},{"text":"\"NONE\"}"}]}}]}`))
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, 0)
	out, err := c.Classify(context.Background(), "schema rules here", "add buy milk")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out != `{"action":"NONE"}` {
		t.Fatalf("Classify() = %q, want concatenated parts", out)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if gotSystem != "schema rules here" || gotUser != "add buy milk" {
		t.Fatalf("system = %q, user = %q", gotSystem, gotUser)
	}
}

func TestHTTPClassifierRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, 3)
	out, err := c.Classify(context.Background(), "ctx", "text")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out != "ok" {
		t.Fatalf("Classify() = %q", out)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestHTTPClassifierDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		http.Error(w, "bad prompt", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, 3)
	_, err := c.Classify(context.Background(), "ctx", "text")
	if err == nil {
		t.Fatalf("Classify() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("Classify() error = %v, want status 400", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 for a non-retryable status", attempts)
	}
}

func TestHTTPClassifierExhaustsRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, 2)
	_, err := c.Classify(context.Background(), "ctx", "text")
	if err == nil {
		t.Fatalf("Classify() error = nil, want failure after retries")
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want initial try plus 2 retries", attempts)
	}
}

func TestHTTPClassifierPassesThroughRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`plain model text without an envelope`))
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, 0)
	out, err := c.Classify(context.Background(), "ctx", "text")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out != "plain model text without an envelope" {
		t.Fatalf("Classify() = %q", out)
	}
}

func TestMockClassifierEmitsWireSchema(t *testing.T) {
	c := NewMockClassifier()

	out, err := c.Classify(context.Background(), "", "add a task: buy milk, urgent")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	var envelope struct {
		Action  string `json:"action"`
		Payload struct {
			Description string `json:"description"`
			Priority    string `json:"priority"`
		} `json:"payload"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("mock output not JSON: %v", err)
	}
	if envelope.Action != "CREATE" || envelope.Payload.Priority != "URGENT" {
		t.Fatalf("envelope = %+v", envelope)
	}
	if envelope.Response == "" {
		t.Fatalf("empty response text")
	}

	out, err = c.Classify(context.Background(), "", "what's the weather?")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !strings.Contains(out, `"action":"NONE"`) {
		t.Fatalf("off-topic output = %q, want NONE", out)
	}
}

func TestNewClassifierModes(t *testing.T) {
	if _, err := NewClassifier(Config{Mode: "http"}); err == nil {
		t.Fatalf("http mode without url should fail")
	}
	if _, err := NewClassifier(Config{Mode: "teleport"}); err == nil {
		t.Fatalf("unknown mode should fail")
	}

	c, err := NewClassifier(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("auto mode error = %v", err)
	}
	if _, ok := c.(*MockClassifier); !ok {
		t.Fatalf("auto mode without url = %T, want mock", c)
	}

	c, err = NewClassifier(Config{Mode: "auto", HTTPURL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("auto mode with url error = %v", err)
	}
	if _, ok := c.(*HTTPClassifier); !ok {
		t.Fatalf("auto mode with url = %T, want http", c)
	}
}
