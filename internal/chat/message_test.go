package chat

import (
	"errors"
	"testing"
)

func TestHistoryAppendOrder(t *testing.T) {
	var h History
	h.Append(Message{Role: RoleUser, Content: "first"})
	h.Append(Message{Role: RoleAssistant, Content: "second"}, Message{Role: RoleUser, Content: "third"})

	snap := h.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(snap))
	}
	want := []string{"first", "second", "third"}
	for i, content := range want {
		if snap[i].Content != content {
			t.Errorf("message %d: got %v, want %q", i, snap[i].Content, content)
		}
	}
}

func TestHistoryClear(t *testing.T) {
	var h History
	h.Append(Message{Role: RoleUser, Content: "hello"})
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("expected empty history after Clear, got %d messages", h.Len())
	}
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	var h History
	h.Append(Message{Role: RoleUser, Content: "original"})

	snap := h.Snapshot()
	snap[0].Content = "mutated"

	fresh := h.Snapshot()
	if len(fresh) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fresh))
	}
	if fresh[0].Content != "original" {
		t.Errorf("snapshot mutation leaked into history: %v", fresh[0].Content)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeUser, "user"},
		{ModeAssistant, "assistant"},
		{ModeSystem, "system"},
		{ModeJSON, "json"},
		{ModeRaw, "raw"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"user", ModeUser},
		{"assistant", ModeAssistant},
		{"system", ModeSystem},
		{"json", ModeJSON},
		{"raw", ModeRaw},
		{"none", ModeRaw},
		{"  RAW  ", ModeRaw},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if err != nil {
			t.Errorf("ParseMode(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseModeUnknown(t *testing.T) {
	_, err := ParseMode("turbo")
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}
