package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"tasktalk/internal/tasks"
)

// EmailNotifier posts to a Resend-compatible transactional email API.
type EmailNotifier struct {
	apiURL    string
	apiKey    string
	fromEmail string
	client    *http.Client
}

func NewEmailNotifier(apiURL, apiKey, fromEmail string) *EmailNotifier {
	return &EmailNotifier{
		apiURL:    strings.TrimSpace(apiURL),
		apiKey:    strings.TrimSpace(apiKey),
		fromEmail: strings.TrimSpace(fromEmail),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (n *EmailNotifier) TaskCreated(ctx context.Context, ownerEmail string, task tasks.Task) error {
	ownerEmail = strings.TrimSpace(ownerEmail)
	if ownerEmail == "" {
		return nil
	}

	payload, err := json.Marshal(emailRequest{
		From:    n.fromEmail,
		To:      []string{ownerEmail},
		Subject: "New Task Created!",
		HTML: fmt.Sprintf("<p>A new task has been added to your list: <strong>%s</strong></p>",
			html.EscapeString(task.Description)),
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	res, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return fmt.Errorf("email api status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
