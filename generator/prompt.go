package generator

import (
	"fmt"
	"strings"

	"tweet_curator/models"
)

// Prompt is the pair of messages sent to the model.
type Prompt struct {
	System string
	User   string
}

const (
	// FormatDirective follows the instruction text in every system prompt.
	FormatDirective = " \n \nReturn your output in this specific JSON format: {TOPIC:CONTENT, TOPIC2:CONTENT2} , " +
		"where TOPIC is the topic of the generated CONTENT. " +
		"Make sure that the TOPIC does not contain any characters that might break the JSON. " +
		"Generate at least ten new different content snippets."

	// ContextPreface precedes each selected context snippet.
	ContextPreface = "Please use these information as additional context when creating content: "

	ItemDelimiter = ", "
)

// UnknownTagError reports selected tags that have no context snippet.
type UnknownTagError struct {
	Tags []string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown context tag(s): %s", strings.Join(e.Tags, ", "))
}

// BuildPrompt assembles the system prompt and the user message for req.
// Every selected tag must be present in req.Contexts; otherwise nothing is built.
func BuildPrompt(req Request) (Prompt, error) {
	tags := SelectedTags(req.Tags)

	var missing []string
	for _, tag := range tags {
		if _, ok := req.Contexts[tag]; !ok {
			missing = append(missing, tag)
		}
	}
	if len(missing) > 0 {
		return Prompt{}, &UnknownTagError{Tags: missing}
	}

	var sb strings.Builder
	sb.WriteString(req.Instruction)
	sb.WriteString(FormatDirective)
	for _, tag := range tags {
		sb.WriteString(ContextPreface)
		sb.WriteString(req.Contexts[tag])
	}

	return Prompt{
		System: sb.String(),
		User:   UserMessage(req.Items),
	}, nil
}

// UserMessage joins the items' text in their current order.
func UserMessage(items []models.Item) string {
	texts := make([]string, 0, len(items))
	for _, it := range items {
		texts = append(texts, it.Text)
	}
	return strings.Join(texts, ItemDelimiter)
}

// SelectedTags drops repeated tags, keeping selection order.
func SelectedTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
