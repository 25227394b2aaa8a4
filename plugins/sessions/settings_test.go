package sessions

import (
	"encoding/json"
	"testing"
	"time"

	"sessionbot/internal/gate"
	logx "sessionbot/pkg/logx"
)

func TestFromConfigValid(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{
		"trello": {"key": "k", "token": "t", "list_id": "l", "timeout": "5s", "rate_per_sec": 4},
		"roblox": {"timeout": "3s"}
	}`)

	p, err := FromConfig(raw, gate.New(time.Minute), nil, logx.Nop())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if p == nil {
		t.Fatal("nil plugin")
	}
	if got := len(p.Commands()); got != 2 {
		t.Fatalf("commands = %d, want 2", got)
	}
}

func TestFromConfigRejectsBadInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "missing key", raw: `{"trello": {"token": "t", "list_id": "l"}}`},
		{name: "missing token", raw: `{"trello": {"key": "k", "list_id": "l"}}`},
		{name: "missing list", raw: `{"trello": {"key": "k", "token": "t"}}`},
		{name: "bad trello timeout", raw: `{"trello": {"key": "k", "token": "t", "list_id": "l", "timeout": "soon"}}`},
		{name: "bad roblox timeout", raw: `{"trello": {"key": "k", "token": "t", "list_id": "l"}, "roblox": {"timeout": "never"}}`},
		{name: "malformed json", raw: `{"trello": `},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(json.RawMessage(tt.raw), gate.New(time.Minute), nil, logx.Nop())
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
