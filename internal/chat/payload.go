package chat

import (
	"encoding/json"
	"fmt"

	"github.com/ziadkadry99/chatdbg/internal/config"
)

// BuildPayload maps the current conversation plus one line of input to a
// request body. For non-raw modes it also returns the messages that should
// be committed to history once the request succeeds; raw mode never touches
// history in either direction.
func BuildPayload(cfg *config.Config, history []Message, input string, mode Mode) (map[string]any, []Message, error) {
	switch mode {
	case ModeRaw:
		body, err := parseRawBody(input)
		return body, nil, err
	case ModeJSON:
		msgs, err := parseJSONMessages(input)
		if err != nil {
			return nil, nil, err
		}
		return buildChatBody(cfg, history, msgs), msgs, nil
	case ModeUser, ModeAssistant, ModeSystem:
		msgs := []Message{{Role: mode.role(), Content: input}}
		return buildChatBody(cfg, history, msgs), msgs, nil
	default:
		return nil, nil, fmt.Errorf("unhandled mode %v", mode)
	}
}

func buildChatBody(cfg *config.Config, history []Message, newMsgs []Message) map[string]any {
	messages := make([]Message, 0, len(history)+len(newMsgs))
	messages = append(messages, history...)
	messages = append(messages, newMsgs...)

	body := map[string]any{
		"model":       cfg.Model,
		"messages":    messages,
		"temperature": cfg.Temperature,
		"top_p":       cfg.TopP,
		"max_tokens":  cfg.MaxTokens,
	}
	if cfg.TopK > 0 {
		body["top_k"] = cfg.TopK
	}
	if cfg.ReasoningEffort != "" {
		body["reasoning_effort"] = cfg.ReasoningEffort
	}
	// Provider-specific overrides win over every built-in key.
	for k, v := range cfg.ExtraParams {
		body[k] = v
	}
	return body
}

func parseRawBody(input string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		return nil, fmt.Errorf("%w: raw body is not valid JSON: %v", ErrInvalidInput, err)
	}
	body, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: raw body must be a JSON object", ErrInvalidInput)
	}
	return body, nil
}

func parseJSONMessages(input string) ([]Message, error) {
	var v any
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch parsed := v.(type) {
	case map[string]any:
		msg, err := messageFromObject(parsed)
		if err != nil {
			return nil, err
		}
		return []Message{msg}, nil
	case []any:
		out := make([]Message, 0, len(parsed))
		for i, item := range parsed {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is not a message object", ErrInvalidInput, i)
			}
			msg, err := messageFromObject(obj)
			if err != nil {
				return nil, err
			}
			out = append(out, msg)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a message object or an array of message objects", ErrInvalidInput)
	}
}

func messageFromObject(obj map[string]any) (Message, error) {
	role, ok := obj["role"].(string)
	if !ok || role == "" {
		return Message{}, fmt.Errorf("%w: message object must contain a role string", ErrInvalidInput)
	}
	content, ok := obj["content"]
	if !ok {
		return Message{}, fmt.Errorf("%w: message object must contain content", ErrInvalidInput)
	}
	return Message{Role: Role(role), Content: content}, nil
}
