package chat

import (
	"bytes"
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"
)

// Reply is the interpreted endpoint response for one turn.
type Reply struct {
	// Text is the assistant reply, or the pretty-printed raw body when the
	// response did not match the chat-completion shape.
	Text string
	// Standard reports whether Text came from choices[0].message.content.
	Standard bool
	// Usage carries token counts when the endpoint reported them.
	Usage *openai.Usage
}

// ExtractReply pulls the assistant text out of a chat-completion response
// body. Bodies that do not match the usual choices[0].message.content shape
// degrade to the raw JSON so the operator still sees what the endpoint said.
func ExtractReply(body []byte) Reply {
	if hasAssistantContent(body) {
		var parsed openai.ChatCompletionResponse
		if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Choices) > 0 {
			reply := Reply{Text: parsed.Choices[0].Message.Content, Standard: true}
			if parsed.Usage.TotalTokens > 0 {
				usage := parsed.Usage
				reply.Usage = &usage
			}
			return reply
		}
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, body, "", "  "); err != nil {
		return Reply{Text: string(body)}
	}
	return Reply{Text: indented.String()}
}

// hasAssistantContent reports whether choices[0].message.content is actually
// present. Legacy completions bodies (choices[0].text) and other provider
// variants unmarshal cleanly into the chat types with an empty Content, so
// key presence has to be checked before trusting the parsed struct.
func hasAssistantContent(body []byte) bool {
	var shape struct {
		Choices []struct {
			Message map[string]json.RawMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &shape); err != nil || len(shape.Choices) == 0 {
		return false
	}
	content, ok := shape.Choices[0].Message["content"]
	return ok && string(bytes.TrimSpace(content)) != "null"
}
