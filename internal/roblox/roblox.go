// Package roblox resolves human-entered usernames against the Roblox users
// API. It is the system's identity resolver: a name either maps to a
// canonical account (id + display name) or it doesn't.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	logx "sessionbot/pkg/logx"
)

const DefaultBaseURL = "https://users.roblox.com"

type Config struct {
	BaseURL string
	Timeout time.Duration
	// RatePerSec bounds outgoing lookups. 0 uses a small default.
	RatePerSec int
}

// Identity is a resolved account. Ephemeral; never persisted.
type Identity struct {
	ID   int64
	Name string
}

type Client struct {
	base string
	http *http.Client
	lim  *rate.Limiter
	log  logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		lim:  rate.NewLimiter(rate.Limit(rps), rps),
		log:  log,
	}
}

type usernamesRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

type usernamesResponse struct {
	Data []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// Resolve maps a username to its canonical identity.
//
// The bool result is the not-found discriminator: a non-2xx response or an
// empty result set means the name is unresolvable, which is a valid outcome
// and not an error. The error is reserved for transport failures. One round
// trip per call; no retries and no caching (usernames change owners, so
// staleness is avoided by design).
func (c *Client) Resolve(ctx context.Context, username string) (Identity, bool, error) {
	if err := c.lim.Wait(ctx); err != nil {
		return Identity{}, false, err
	}

	body, err := json.Marshal(usernamesRequest{
		Usernames:          []string{username},
		ExcludeBannedUsers: true,
	})
	if err != nil {
		return Identity{}, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/usernames/users", bytes.NewReader(body))
	if err != nil {
		return Identity{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Identity{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		c.log.Debug("username lookup rejected", logx.String("username", username), logx.Int("status", resp.StatusCode))
		return Identity{}, false, nil
	}

	var out usernamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Identity{}, false, err
	}
	if len(out.Data) == 0 {
		return Identity{}, false, nil
	}
	u := out.Data[0]
	return Identity{ID: u.ID, Name: u.Name}, true, nil
}
