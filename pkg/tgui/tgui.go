// Package tgui holds small helpers for inline-keyboard UI on Telegram.
package tgui

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Data formats inline callback data as "plugin:action:payload".
// Payload is kept as-is (no escaping).
func Data(plugin, action, payload string) string {
	plugin = strings.TrimSpace(plugin)
	action = strings.TrimSpace(action)
	if payload == "" {
		return plugin + ":" + action
	}
	return plugin + ":" + action + ":" + payload
}

// SingleButton builds a one-button inline keyboard.
func SingleButton(text, data string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{{Text: text, Data: data}},
		},
	}
}
