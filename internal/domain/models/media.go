package models

import "time"

const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Media is one entry of a property gallery.
type Media struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"propertyId"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}
