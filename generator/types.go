package generator

import "tweet_curator/models"

// Request is one generation action. It is built per user action and not modified after submission.
type Request struct {
	Instruction string
	// Tags in selection order. Duplicates collapse to the first occurrence.
	Tags     []string
	Contexts map[string]string
	Items    []models.Item
}

// Topic is one model-returned topic and its content, in document order.
type Topic struct {
	Name    string
	Content string
}
