package narrate

import (
	"fmt"
	"strings"

	"culturewalk.ai/internal/scene"
)

// SystemPrompt assembles the LLM system message for a scene, optionally
// focused on one point. The scene's defaultPrompt seeds the persona; the
// point's aiContext supplies the exhibit facts.
func SystemPrompt(meta scene.Meta, point *scene.Point) string {
	var b strings.Builder
	if meta.DefaultPrompt != "" {
		b.WriteString(meta.DefaultPrompt)
	} else {
		fmt.Fprintf(&b, "You are a knowledgeable guide for %q. %s", meta.Name, meta.Description)
	}
	if point != nil {
		fmt.Fprintf(&b, "\n\nThe visitor is standing at %q.", point.Name)
		if point.AIContext != "" {
			b.WriteString(" Context: ")
			b.WriteString(point.AIContext)
		}
		if point.Description != "" {
			b.WriteString(" ")
			b.WriteString(point.Description)
		}
	}
	b.WriteString("\n\nAnswer in short, vivid paragraphs. Stay on the subject of this tour.")
	return b.String()
}

// Greeting is the narration line fired when a visitor first reaches a
// point.
func Greeting(point scene.Point) string {
	if point.AIContext != "" {
		return fmt.Sprintf("Welcome to %s.\n\n%s", point.Name, point.AIContext)
	}
	if point.Description != "" {
		return fmt.Sprintf("Welcome to %s.\n\n%s", point.Name, point.Description)
	}
	return fmt.Sprintf("Welcome to %s.", point.Name)
}
