package interpreter

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"tasktalk/internal/tasks"
)

// deadlineLayouts are tried in order when the model's deadline is not plain
// RFC3339. A deadline that matches none of them is dropped, not rejected: a
// malformed timestamp alone should not block task creation.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ValidateRaw decodes and sanitizes one raw model output. It returns the
// validated intent, the model's provisional response text, and a rejection
// reason. A rejected output always degrades to a NONE intent so nothing
// downstream can act on it.
func ValidateRaw(raw string) (Intent, string, RejectionReason) {
	obj, ok := decodeEnvelope(raw)
	if !ok {
		return Intent{Action: ActionNone}, "", RejectionParseError
	}

	provisional, _ := asString(obj["response"])

	actionRaw, ok := asString(obj["action"])
	if !ok {
		return Intent{Action: ActionNone}, provisional, RejectionParseError
	}
	action := Action(strings.ToUpper(strings.TrimSpace(actionRaw)))

	payload, _ := obj["payload"].(map[string]any)

	switch action {
	case ActionNone:
		return Intent{Action: ActionNone}, provisional, RejectionNone

	case ActionCreate:
		create, reason := validateCreate(payload)
		if reason != RejectionNone {
			return Intent{Action: ActionNone}, provisional, reason
		}
		return Intent{Action: ActionCreate, Create: create}, provisional, RejectionNone

	case ActionDelete, ActionRead:
		filter, reason := validateFilter(payload)
		if reason != RejectionNone {
			return Intent{Action: ActionNone}, provisional, reason
		}
		return Intent{Action: action, Filter: filter}, provisional, RejectionNone

	default:
		return Intent{Action: ActionNone}, provisional, RejectionParseError
	}
}

// decodeEnvelope extracts and unmarshals the JSON object from the raw model
// text. Models wrap JSON in markdown fences or prose often enough that a
// strict single-pass unmarshal would reject perfectly salvageable output, so
// this peels fences, trims to the outermost braces, and as a last resort
// runs the text through jsonrepair.
func decodeEnvelope(raw string) (map[string]any, bool) {
	candidate := extractJSONObject(raw)
	if candidate == "" {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return obj, true
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 {
		return ""
	}
	if end > start {
		return s[start : end+1]
	}
	// Unbalanced output; hand the tail to jsonrepair as-is.
	return s[start:]
}

func validateCreate(payload map[string]any) (*CreateIntent, RejectionReason) {
	desc, _ := asString(payload["description"])
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil, RejectionValidation
	}

	create := &CreateIntent{
		Description: desc,
		Priority:    tasks.PriorityNormal,
		Status:      tasks.StatusTodo,
	}

	// Unknown enum values fall back to the default rather than being
	// persisted; the store must never hold unrepresentable state.
	if raw, ok := asString(payload["priority"]); ok {
		if p, valid := tasks.ParsePriority(raw); valid {
			create.Priority = p
		}
	}
	if raw, ok := asString(payload["status"]); ok {
		if st, valid := tasks.ParseStatus(raw); valid {
			create.Status = st
		}
	}
	if raw, ok := asString(payload["deadline"]); ok {
		if t, valid := parseDeadline(raw); valid {
			create.Deadline = &t
		}
	}
	return create, RejectionNone
}

// validateFilter builds the task filter for DELETE/READ. Fields with invalid
// enum values are dropped; an empty result is rejected so a mangled filter
// can never widen into an unbounded match.
func validateFilter(payload map[string]any) (*tasks.Filter, RejectionReason) {
	rawFilter, _ := payload["filter"].(map[string]any)
	if len(rawFilter) == 0 {
		return nil, RejectionValidation
	}

	var filter tasks.Filter
	if raw, ok := asString(rawFilter["priority"]); ok {
		if p, valid := tasks.ParsePriority(raw); valid {
			filter.Priority = &p
		}
	}
	if raw, ok := asString(rawFilter["status"]); ok {
		if st, valid := tasks.ParseStatus(raw); valid {
			filter.Status = &st
		}
	}
	if filter.Empty() {
		return nil, RejectionValidation
	}
	return &filter, RejectionNone
}

func parseDeadline(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
