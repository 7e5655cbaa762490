package entity

import "time"

type Link struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profileId"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Platform     string    `json:"platform"`
	IsVisible    bool      `json:"isVisible"`
	DisplayOrder int       `json:"displayOrder"`
	ClickCount   int64     `json:"clickCount"`
	IconURL      string    `json:"iconUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LinkOrder assigns a display order to one link.
type LinkOrder struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"displayOrder"`
}
