package sessions

import (
	"encoding/json"
	"errors"
	"time"

	"sessionbot/internal/config"
	"sessionbot/internal/gate"
	"sessionbot/internal/session"
	"sessionbot/internal/storage"
	logx "sessionbot/pkg/logx"
)

// Settings is the plugin's config section.
//
// All durations are Go duration strings (e.g. "10s").
type Settings struct {
	Trello struct {
		Key        string `json:"key"`
		Token      string `json:"token"`
		ListID     string `json:"list_id"`
		BaseURL    string `json:"base_url,omitempty"`
		Timeout    string `json:"timeout,omitempty"`
		RatePerSec int    `json:"rate_per_sec,omitempty"`
	} `json:"trello"`
	Roblox struct {
		BaseURL    string `json:"base_url,omitempty"`
		Timeout    string `json:"timeout,omitempty"`
		RatePerSec int    `json:"rate_per_sec,omitempty"`
	} `json:"roblox"`
}

// FromConfig builds the plugin with its clients and workflow from the raw
// plugin config section.
func FromConfig(raw json.RawMessage, g *gate.Gate, store storage.Store, log logx.Logger) (*Plugin, error) {
	var s Settings
	if len(raw) == 0 {
		return nil, errors.New("sessions: plugin config is required")
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s.Trello.Key == "" || s.Trello.Token == "" || s.Trello.ListID == "" {
		return nil, errors.New("sessions: trello key, token and list_id are required")
	}

	trelloTimeout, err := config.ParseDurationOrDefault("plugins.sessions.trello.timeout", s.Trello.Timeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	robloxTimeout, err := config.ParseDurationOrDefault("plugins.sessions.roblox.timeout", s.Roblox.Timeout, 10*time.Second)
	if err != nil {
		return nil, err
	}

	wf := session.NewWorkflow(
		newResolver(s, robloxTimeout, log),
		newCardService(s, trelloTimeout, log),
		log.With(logx.String("comp", "workflow")),
	)
	return New(wf, g, store, log), nil
}
