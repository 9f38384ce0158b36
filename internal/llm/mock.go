package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// MockClassifier provides deterministic local classifications when no real
// model endpoint is configured. It emits the same wire schema the real model
// is prompted to produce, so the full pipeline can run in dev mode.
type MockClassifier struct{}

func NewMockClassifier() *MockClassifier { return &MockClassifier{} }

func (c *MockClassifier) Classify(ctx context.Context, _, userText string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return buildMockOutput(userText), nil
}

func buildMockOutput(userText string) string {
	lower := strings.ToLower(strings.TrimSpace(userText))

	type payload struct {
		Description string            `json:"description,omitempty"`
		Priority    string            `json:"priority,omitempty"`
		Filter      map[string]string `json:"filter,omitempty"`
	}
	type envelope struct {
		Action   string  `json:"action"`
		Payload  payload `json:"payload"`
		Response string  `json:"response"`
	}

	out := envelope{Action: "NONE", Response: "I'm not sure what you want me to do with your tasks."}
	switch {
	case strings.HasPrefix(lower, "add") || strings.HasPrefix(lower, "create"):
		desc := ""
		if i := strings.Index(userText, " "); i >= 0 {
			desc = strings.TrimSpace(userText[i+1:])
		}
		desc = strings.TrimSpace(strings.TrimPrefix(desc, "a task:"))
		out = envelope{
			Action:   "CREATE",
			Payload:  payload{Description: desc, Priority: mockPriority(lower)},
			Response: "I've added that to your tasks.",
		}
	case strings.HasPrefix(lower, "delete") || strings.HasPrefix(lower, "remove"):
		out = envelope{
			Action:   "DELETE",
			Payload:  payload{Filter: mockFilter(lower)},
			Response: "I've deleted your most recent matching task.",
		}
	case strings.HasPrefix(lower, "show") || strings.HasPrefix(lower, "list") || strings.HasPrefix(lower, "read"):
		out = envelope{
			Action:   "READ",
			Payload:  payload{Filter: mockFilter(lower)},
			Response: "Here are your matching tasks.",
		}
	}

	raw, _ := json.Marshal(out)
	return string(raw)
}

func mockPriority(lower string) string {
	switch {
	case strings.Contains(lower, "urgent"):
		return "URGENT"
	case strings.Contains(lower, "high"):
		return "HIGH"
	case strings.Contains(lower, "low priority"):
		return "LOW"
	default:
		return ""
	}
}

func mockFilter(lower string) map[string]string {
	f := map[string]string{}
	if p := mockPriority(lower); p != "" {
		f["priority"] = p
	}
	switch {
	case strings.Contains(lower, "done") || strings.Contains(lower, "finished"):
		f["status"] = "DONE"
	case strings.Contains(lower, "in progress"):
		f["status"] = "IN_PROGRESS"
	case strings.Contains(lower, "todo") || strings.Contains(lower, "to do"):
		f["status"] = "TODO"
	}
	if len(f) == 0 {
		// An empty filter would be rejected downstream; default to the
		// whole TODO list so the mock stays useful.
		f["status"] = "TODO"
	}
	return f
}
