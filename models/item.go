package models

// Item is one curated tweet-like record. JSON names match the dashboard's wire format.
type Item struct {
	ID           string   `json:"id"`
	Author       string   `json:"user"`
	Text         string   `json:"tweet"`
	Likes        int      `json:"likes"`
	Date         string   `json:"date"`
	ProfileImage string   `json:"profileImage,omitempty"`
	URL          string   `json:"url,omitempty"`
	UserTags     []string `json:"userTags"`
}
