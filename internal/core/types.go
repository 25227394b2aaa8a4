package core

import (
	"context"

	kit "sessionbot/internal/transport"
	logx "sessionbot/pkg/logx"
)

// Access is the permission tier required to run a command. There are only
// two tiers: anyone, and the elevated operator list from config. The check
// runs in the router, before any plugin code.
type Access int

const (
	AccessEveryone Access = iota
	AccessElevated
)

type Request struct {
	Update       kit.Update
	Chat         kit.ChatTarget
	FromID       int64
	FromUsername string

	// Command routing (empty for callbacks and plain text).
	Command string
	Args    []string

	Adapter kit.Adapter
	Log     logx.Logger
}

// Reply sends plain text back to the originating chat.
func (r *Request) Reply(ctx context.Context, text string) error {
	_, err := r.Adapter.SendText(ctx, r.Chat, text, nil)
	return err
}

type HandlerFunc func(ctx context.Context, req *Request) error

type Middleware func(next HandlerFunc) HandlerFunc

func Chain(h HandlerFunc, m ...Middleware) HandlerFunc {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

type Command struct {
	Route       string
	Description string
	Usage       string
	Access      Access
	Handle      HandlerFunc
}

// Plugin is a command provider.
type Plugin interface {
	Name() string
	Commands() []Command
}

// CallbackHandler handles inline-button callbacks addressed to the plugin
// via "plugin:action:payload" callback data.
type CallbackHandler interface {
	HandleCallback(ctx context.Context, req *Request, action, payload string) error
}

// TextHandler gets a chance to consume plain (non-command) messages, e.g.
// for conversational form input. It reports whether it handled the text.
type TextHandler interface {
	HandleText(ctx context.Context, req *Request) (bool, error)
}
