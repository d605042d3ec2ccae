package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformedOutput marks model output that is not a flat JSON object of strings.
var ErrMalformedOutput = errors.New("malformed model output")

// ParseTopics validates raw model output and returns its topics in document order.
// Only a non-empty JSON object whose values are all strings is accepted.
func ParseTopics(raw string) ([]Topic, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedOutput)
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedOutput)
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", ErrMalformedOutput, doc.Type)
	}

	var (
		topics []Topic
		bad    string
	)
	index := make(map[string]int)
	doc.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			bad = key.String()
			return false
		}
		name := key.String()
		// A repeated key keeps its first position and its last value.
		if i, ok := index[name]; ok {
			topics[i].Content = value.String()
			return true
		}
		index[name] = len(topics)
		topics = append(topics, Topic{Name: name, Content: value.String()})
		return true
	})
	if bad != "" {
		return nil, fmt.Errorf("%w: topic %q is not a string", ErrMalformedOutput, bad)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", ErrMalformedOutput)
	}
	return topics, nil
}
