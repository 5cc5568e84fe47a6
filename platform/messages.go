package platform

// Message payload builders for the bot API. Kept as plain maps since the API
// surface is JSON-shaped and only a handful of message kinds are used.

// TextMessage wraps plain text in the bot message envelope.
func TextMessage(text string) map[string]any {
	return map[string]any{
		"content": map[string]any{
			"type": "text",
			"text": text,
		},
	}
}

// ImageMessage builds an image preview message pointing at a public URL.
func ImageMessage(resourceURL, altText string) map[string]any {
	return map[string]any{
		"content": map[string]any{
			"type":        "image",
			"resourceUrl": resourceURL,
			"altText":     altText,
		},
	}
}

// QuickReplyItem is one action button attached to a text message.
type QuickReplyItem struct {
	Type  string // "location" or "message"
	Label string
	Text  string // only for type "message"
}

// TextWithQuickReplies builds a text message carrying quick-reply buttons.
func TextWithQuickReplies(text string, items []QuickReplyItem) map[string]any {
	replies := make([]map[string]any, 0, len(items))
	for _, it := range items {
		action := map[string]any{
			"type":  it.Type,
			"label": it.Label,
		}
		if it.Type == "message" && it.Text != "" {
			action["text"] = it.Text
		}
		replies = append(replies, map[string]any{"action": action})
	}
	return map[string]any{
		"content": map[string]any{
			"type": "text",
			"text": text,
			"quickReply": map[string]any{
				"items": replies,
			},
		},
	}
}
