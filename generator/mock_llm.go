package generator

import (
	"context"
	"encoding/json"
)

// ShowcaseLLM answers without calling a model. It backs the dashboard when no
// API key is configured.
type ShowcaseLLM struct{}

var showcaseTopics = []Topic{
	{Name: "Exploration_vs_Exploitation", Content: "Great products balance trying new ideas with doubling down on what already works. Ship small experiments, keep the winners."},
	{Name: "Flexible_Tooling", Content: "The best frameworks let you bring your own pipelines, models and training loops instead of forcing one way of working."},
	{Name: "Hiring", Content: "We are looking for builders who enjoy pushing the boundaries of search and generation. Come build with us."},
}

func (ShowcaseLLM) Complete(_ context.Context, _ Prompt) (string, error) {
	obj := make(map[string]string, len(showcaseTopics))
	for _, t := range showcaseTopics {
		obj[t.Name] = t.Content
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
