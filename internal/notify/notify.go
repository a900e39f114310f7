// Package notify is the user-facing message surface: everything a browser
// client would show as a toast goes through a Notifier. It is deliberately
// separate from logging so diagnostic output never leaks into user copy.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Notifier receives user-visible messages from the payment flow.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Console renders messages to a terminal, one per line.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a Notifier writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{out: w}
}

func (c *Console) Success(msg string) { c.write("ok", msg) }

func (c *Console) Error(msg string) { c.write("error", msg) }

func (c *Console) Info(msg string) { c.write("info", msg) }

func (c *Console) write(level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[%s] %s\n", level, msg)
}

// Discard drops every message. Useful as a default when the host installs no
// notifier.
type Discard struct{}

func (Discard) Success(string) {}

func (Discard) Error(string) {}

func (Discard) Info(string) {}
