package narrate

import (
	"context"
	"strings"
)

// Mock answers without any backend, so the tour keeps working when no
// LLM is configured.
type Mock struct{}

func (Mock) Complete(_ context.Context, messages []Message) (string, error) {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = messages[i].Content
			break
		}
	}
	q := strings.ToLower(last)
	switch {
	case strings.Contains(q, "history") || strings.Contains(q, "old"):
		return "This piece carries centuries of history; every mark on it tells part of that story. Walk closer and I will point out the details.", nil
	case strings.Contains(q, "made") || strings.Contains(q, "material"):
		return "Craftspeople of the period shaped it with techniques passed down through generations, using the finest materials they could trade for.", nil
	case last == "":
		return "Welcome to the tour. Approach any exhibit and ask me about it.", nil
	default:
		return "A fine question. Each exhibit here rewards a closer look; ask me about its origin, its maker or the era it comes from.", nil
	}
}
