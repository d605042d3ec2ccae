package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Status tags a Result as exactly one of success or failure.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Display labels. The emoji prefixes are part of the dashboard contract.
const (
	LabelStatus      = "✅ Loading done!"
	LabelContext     = "✨ Context"
	LabelPrompt      = "📝 Prompt"
	LabelInput       = "📝 Input"
	LabelError       = "⚠️ Error occured"
	LabelErrorDetail = "Error"
	LabelErrorPrompt = "Prompt"

	TopicPrefix = "🧠 "

	StatusMessage        = "Here are the results..."
	ErrorMessage         = "Something went wrong!"
	ErrorDetailExhausted = "Was not able to generate new content!"
)

var reservedLabels = map[string]bool{
	LabelStatus: true, LabelContext: true, LabelPrompt: true, LabelInput: true,
	LabelError: true, LabelErrorDetail: true, LabelErrorPrompt: true,
}

// Entry is one label→content pair of a Result.
type Entry struct {
	Label   string
	Content string
}

// Result is the ordered, flat label→content payload shown by the dashboard.
type Result struct {
	Status  Status
	Entries []Entry
	// Attempts is how many completion calls produced this result. Not serialized.
	Attempts int
}

// TopicLabel is the display label of a model topic.
func TopicLabel(topic string) string {
	return TopicPrefix + strings.ReplaceAll(topic, "_", " ")
}

func successResult(prompt Prompt, tags []string, topics []Topic) Result {
	r := Result{Status: StatusSuccess}
	r.add(LabelStatus, StatusMessage)
	if len(tags) > 0 {
		r.add(LabelContext, "Including context "+strings.Join(tags, ", "))
	}
	for _, t := range topics {
		label := TopicLabel(t.Name)
		if reservedLabels[t.Name] || r.Has(t.Name) || r.Has(label) {
			continue
		}
		r.add(label, t.Content)
	}
	r.add(LabelPrompt, prompt.System)
	r.add(LabelInput, prompt.User)
	return r
}

func failureResult(prompt Prompt) Result {
	r := Result{Status: StatusFailure}
	r.add(LabelError, ErrorMessage)
	r.add(LabelErrorDetail, ErrorDetailExhausted)
	r.add(LabelErrorPrompt, prompt.System)
	return r
}

func (r *Result) add(label, content string) {
	r.Entries = append(r.Entries, Entry{Label: label, Content: content})
}

func (r Result) Has(label string) bool {
	_, ok := r.Get(label)
	return ok
}

func (r Result) Get(label string) (string, bool) {
	for _, e := range r.Entries {
		if e.Label == label {
			return e.Content, true
		}
	}
	return "", false
}

// Topics returns the model-derived entries with their labels.
func (r Result) Topics() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if strings.HasPrefix(e.Label, TopicPrefix) {
			out = append(out, e)
		}
	}
	return out
}

func (r Result) OK() bool { return r.Status == StatusSuccess }

// HTTPStatus is 200 for success and 500 for an exhausted retry budget.
func (r Result) HTTPStatus() int {
	if r.OK() {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// MarshalJSON writes the entries as one flat object, keeping insertion order.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Content)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object back in document order. The status is
// derived from the presence of the error label.
func (r *Result) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("result: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("result: expected object")
	}
	var entries []Entry
	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = fmt.Errorf("result: label %q is not a string", key.String())
			return false
		}
		entries = append(entries, Entry{Label: key.String(), Content: value.String()})
		return true
	})
	if err != nil {
		return err
	}
	r.Entries = entries
	r.Status = StatusSuccess
	if r.Has(LabelError) {
		r.Status = StatusFailure
	}
	return nil
}
