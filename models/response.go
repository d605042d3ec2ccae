package models

type ItemsResponse struct {
	Count int    `json:"count"`
	Items []Item `json:"items"`
}

type FacetsResponse struct {
	Users      []string `json:"users"`
	Tags       []string `json:"tags"`
	LatestDate string   `json:"latest_date,omitempty"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
