package interpreter

import (
	"fmt"
	"strings"
)

// Fixed override templates. Whenever a command was rejected, the model's own
// narrative is discarded so the reply can never claim an effect that did not
// happen.
const (
	replyParseError = "Sorry, I couldn't understand that request. Could you try rephrasing it?"
	replyValidation = "I couldn't work out the details of that request, so I haven't changed your tasks."
	replyNoDelete   = "I couldn't find a task matching that description to delete."
	replyNoRead     = "I couldn't find any tasks matching that."

	replyCreatedFallback = "Done - I've added that task to your list."
	replyDeletedFallback = "Done - I've removed that task from your list."
)

// Compose produces the final user-facing response text for an outcome.
func Compose(outcome Outcome) string {
	switch outcome.Rejection {
	case RejectionParseError:
		return replyParseError
	case RejectionValidation:
		return replyValidation
	case RejectionNotFound:
		if outcome.Intent.Action == ActionRead {
			return replyNoRead
		}
		return replyNoDelete
	}

	text := strings.TrimSpace(outcome.ResponseText)

	switch outcome.Intent.Action {
	case ActionCreate:
		if text == "" {
			return replyCreatedFallback
		}
		return text
	case ActionDelete:
		if text == "" {
			return replyDeletedFallback
		}
		return text
	case ActionRead:
		return composeRead(text, outcome)
	default:
		if text == "" {
			return "I'm not sure what you'd like me to do with your tasks."
		}
		return text
	}
}

func composeRead(text string, outcome Outcome) string {
	var b strings.Builder
	if text != "" {
		b.WriteString(text)
	} else {
		b.WriteString("Here's what I found:")
	}
	for _, task := range outcome.Tasks {
		b.WriteString(fmt.Sprintf("\n- %s (%s, %s", task.Description, task.Priority, task.Status))
		if task.Deadline != nil {
			b.WriteString(", due " + task.Deadline.Format("Mon Jan 2 15:04"))
		}
		b.WriteString(")")
	}
	return b.String()
}
