package chat

import (
	"fmt"
	"strings"
)

// Mode selects how a line of interactive input is interpreted.
type Mode int

const (
	// ModeUser wraps input as a user message.
	ModeUser Mode = iota
	// ModeAssistant wraps input as an assistant message.
	ModeAssistant
	// ModeSystem wraps input as a system message.
	ModeSystem
	// ModeJSON parses input as a message object or array of them.
	ModeJSON
	// ModeRaw sends input verbatim as the entire request body.
	ModeRaw
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "user"
	case ModeAssistant:
		return "assistant"
	case ModeSystem:
		return "system"
	case ModeJSON:
		return "json"
	case ModeRaw:
		return "raw"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// role maps a text-input mode to the message role it produces.
func (m Mode) role() Role {
	switch m {
	case ModeAssistant:
		return RoleAssistant
	case ModeSystem:
		return RoleSystem
	default:
		return RoleUser
	}
}

// ParseMode maps a /mode argument to a Mode. "none" is accepted as an alias
// for raw.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return ModeUser, nil
	case "assistant":
		return ModeAssistant, nil
	case "system":
		return ModeSystem, nil
	case "json":
		return ModeJSON, nil
	case "raw", "none":
		return ModeRaw, nil
	default:
		return ModeUser, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
