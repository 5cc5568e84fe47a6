package bot

import "testing"

func validEvent() WebhookEvent {
	return WebhookEvent{
		Type:       "message",
		IssuedTime: "2026-08-28T09:00:00Z",
		Source:     EventSource{UserID: "user-1", DomainID: 400123},
		Content:    EventContent{Type: ContentText, Text: "/test"},
	}
}

func TestWebhookEventValidate(t *testing.T) {
	ev := validEvent()
	if err := ev.Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*WebhookEvent)
	}{
		{"missing type", func(e *WebhookEvent) { e.Type = "" }},
		{"missing user", func(e *WebhookEvent) { e.Source.UserID = "" }},
		{"missing domain", func(e *WebhookEvent) { e.Source.DomainID = 0 }},
		{"missing content type", func(e *WebhookEvent) { e.Content.Type = "" }},
		{"missing issuedTime", func(e *WebhookEvent) { e.IssuedTime = "" }},
		{"garbage issuedTime", func(e *WebhookEvent) { e.IssuedTime = "yesterday" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(&ev)
			if err := ev.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIssuedAtFormats(t *testing.T) {
	for _, issued := range []string{"2026-08-28T09:00:00Z", "2026-08-28 09:00:00"} {
		ev := validEvent()
		ev.IssuedTime = issued
		if _, err := ev.IssuedAt(); err != nil {
			t.Errorf("IssuedAt(%q): %v", issued, err)
		}
	}
}
