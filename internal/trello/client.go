// Package trello talks to the Trello REST API for one configured list.
//
// The package splits into a low-level Client (one method per endpoint, errors
// surfaced as-is) and two views on top of it: Board (board/label metadata
// with a memoized board id) and Cards (card operations with failures absorbed
// into optional/boolean results, so the workflow layer stays data-driven).
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logx "sessionbot/pkg/logx"
)

const DefaultBaseURL = "https://api.trello.com"

type Config struct {
	Key    string
	Token  string
	ListID string

	BaseURL string
	Timeout time.Duration
	// RatePerSec bounds outgoing calls (Trello allows ~100 req / 10 s per
	// token). 0 uses a conservative default.
	RatePerSec int
}

// Card is the identifier-bearing record returned by the board service.
// Everything else on the wire is treated as opaque.
type Card struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Client struct {
	cfg  Config
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
		rps = 8
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:  cfg,
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		lim:  rate.NewLimiter(rate.Limit(rps), rps),
		log:  log,
	}
}

func (c *Client) ListID() string { return c.cfg.ListID }

// call performs one authenticated request and decodes a 2xx JSON body into
// out (out may be nil when the body doesn't matter).
func (c *Client) call(ctx context.Context, method, path string, params url.Values, out any) error {
	if err := c.lim.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.cfg.Key)
	params.Set("token", c.cfg.Token)

	req, err := http.NewRequestWithContext(ctx, method, c.base+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("trello: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// getListBoard returns the id of the board owning the configured list.
func (c *Client) getListBoard(ctx context.Context) (string, error) {
	var out struct {
		IDBoard string `json:"idBoard"`
	}
	if err := c.call(ctx, http.MethodGet, "/1/lists/"+c.cfg.ListID, nil, &out); err != nil {
		return "", err
	}
	return out.IDBoard, nil
}

func (c *Client) getLabels(ctx context.Context, boardID string) ([]Label, error) {
	var out []Label
	if err := c.call(ctx, http.MethodGet, "/1/boards/"+boardID+"/labels", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// createCard creates a card on the configured list. due is ISO-8601 with
// offset.
func (c *Client) createCard(ctx context.Context, name, desc, dueISO string) (string, error) {
	params := url.Values{}
	params.Set("idList", c.cfg.ListID)
	params.Set("name", name)
	params.Set("desc", desc)
	params.Set("due", dueISO)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/1/cards", params, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) attachLabel(ctx context.Context, cardID, labelID string) error {
	params := url.Values{}
	params.Set("value", labelID)
	return c.call(ctx, http.MethodPost, "/1/cards/"+cardID+"/idLabels", params, nil)
}

func (c *Client) listCards(ctx context.Context) ([]Card, error) {
	var out []Card
	if err := c.call(ctx, http.MethodGet, "/1/lists/"+c.cfg.ListID+"/cards", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
