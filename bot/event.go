package bot

import (
	"fmt"
	"time"
)

// Content types the router dispatches on.
const (
	ContentText     = "text"
	ContentPostback = "postback"
	ContentImage    = "image"
	ContentLocation = "location"
)

// WebhookEvent is the inbound callback payload from the messaging platform.
// Content is a tagged union keyed by Content.Type.
type WebhookEvent struct {
	Type       string       `json:"type"`
	Source     EventSource  `json:"source"`
	IssuedTime string       `json:"issuedTime"`
	Content    EventContent `json:"content"`
}

type EventSource struct {
	UserID    string `json:"userId"`
	ChannelID string `json:"channelId"`
	DomainID  int64  `json:"domainId"`
}

type EventContent struct {
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	Postback  string  `json:"postback"`
	FileID    string  `json:"fileId"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects payloads missing the fields every handler depends on.
func (e *WebhookEvent) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("missing event type")
	}
	if e.Source.UserID == "" {
		return fmt.Errorf("missing source.userId")
	}
	if e.Source.DomainID == 0 {
		return fmt.Errorf("missing source.domainId")
	}
	if e.Content.Type == "" {
		return fmt.Errorf("missing content.type")
	}
	if _, err := e.IssuedAt(); err != nil {
		return err
	}
	return nil
}

// IssuedAt parses the platform's issuedTime, tolerating both RFC3339 and the
// platform's space-separated variant.
func (e *WebhookEvent) IssuedAt() (time.Time, error) {
	if e.IssuedTime == "" {
		return time.Time{}, fmt.Errorf("missing issuedTime")
	}
	layouts := []string{time.RFC3339, "2006-01-02 15:04:05"}
	for _, l := range layouts {
		if t, err := time.Parse(l, e.IssuedTime); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable issuedTime %q", e.IssuedTime)
}
