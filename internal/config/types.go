package config

import (
	"bytes"
	"encoding/json"
)

type Config struct {
	Telegram Telegram `json:"telegram"`
	Logging  Logging  `json:"logging"`
	Gate     Gate     `json:"gate,omitempty"`
	Storage  *Storage `json:"storage,omitempty"`

	Plugins map[string]PluginRaw `json:"plugins"`
}

type Telegram struct {
	Token string `json:"token"`
	// ElevatedUserIDs may run commands declared with AccessElevated
	// (scheduling and cancellation). Owner-level and elevated are the same
	// tier here; there is no finer role model on purpose.
	ElevatedUserIDs []int64 `json:"elevated_user_ids"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout"`
}

type Logging struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Gate controls pending input-collection handles.
//
// TTL bounds how long an unclaimed or half-filled form may idle before it
// is dropped. SweepSpec is a robfig/cron spec for the expiry sweep.
type Gate struct {
	TTL       string `json:"ttl,omitempty"`        // default "2m"
	SweepSpec string `json:"sweep_spec,omitempty"` // default "@every 1m"
}

// Storage controls the optional persistence layer (audit log).
//
// Driver values:
//   - "sqlite": SQLite database file
//   - "" or "none": storage disabled
type Storage struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
	// RetentionDays prunes audit rows older than this. 0 keeps everything.
	RetentionDays int `json:"retention_days,omitempty"`
	// PruneSpec is a robfig/cron spec for the retention job.
	PruneSpec string `json:"prune_spec,omitempty"` // default "0 3 * * *"
}

type PluginRaw struct {
	Enabled bool            `json:"enabled"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// UnmarshalJSON disallows unknown fields so stale keys are caught early
// during config reload.
func (p *PluginRaw) UnmarshalJSON(b []byte) error {
	type tmp struct {
		Enabled bool            `json:"enabled"`
		Config  json.RawMessage `json:"config,omitempty"`
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var t tmp
	if err := dec.Decode(&t); err != nil {
		return err
	}
	*p = PluginRaw{Enabled: t.Enabled, Config: t.Config}
	return nil
}
