package agenthost

import "encoding/json"

// StreamEventType classifies a stream-json stdout line.
type StreamEventType string

const (
	StreamAssistant StreamEventType = "assistant"
	StreamResult    StreamEventType = "result"
	StreamSystem    StreamEventType = "system"
)

// StreamEvent is the decoded form of one stream-json line.
type StreamEvent struct {
	Type    StreamEventType
	Text    string // Assistant text or final result text
	IsError bool   // Set on failed results
}

type streamContentBlock struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

type streamMessage struct {
	Role    string               `json:"role,omitempty"`
	Content []streamContentBlock `json:"content,omitempty"`
}

type rawStreamEvent struct {
	Type    string         `json:"type"`
	SubType string         `json:"subtype,omitempty"`
	Message *streamMessage `json:"message,omitempty"`
	Result  string         `json:"result,omitempty"`
	IsError bool           `json:"is_error,omitempty"`
}

// ParseStreamLine decodes one stdout line from a stream-json run. Lines that
// are not valid JSON or carry no displayable content return ok=false; the
// raw line stays available to the caller for diagnostics.
func ParseStreamLine(line string) (StreamEvent, bool) {
	var raw rawStreamEvent
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return StreamEvent{}, false
	}

	switch raw.Type {
	case "assistant":
		if raw.Message == nil {
			return StreamEvent{}, false
		}
		var text string
		for _, block := range raw.Message.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		if text == "" {
			return StreamEvent{}, false
		}
		return StreamEvent{Type: StreamAssistant, Text: text}, true

	case "result":
		return StreamEvent{
			Type:    StreamResult,
			Text:    raw.Result,
			IsError: raw.IsError,
		}, true

	case "system":
		return StreamEvent{Type: StreamSystem}, true
	}
	return StreamEvent{}, false
}
