package main

import (
	"context"
	"fmt"
	"io"

	"github.com/adel-hamdan/purchases-tracker/internal/workflow"
)

// consoleTransport renders workflow replies on a terminal. Buttons become a
// numbered menu; the chat loop maps a typed number back to the payload.
type consoleTransport struct {
	out     io.Writer
	buttons []workflow.Button
}

func (c *consoleTransport) Reply(ctx context.Context, sessionID, text string, buttons ...workflow.Button) error {
	fmt.Fprintln(c.out, text)
	c.buttons = buttons
	for i, b := range buttons {
		fmt.Fprintf(c.out, "  [%d] %s\n", i+1, b.Label)
	}
	return nil
}

// payloadFor maps a menu number from the last reply to its button payload.
func (c *consoleTransport) payloadFor(n int) (string, bool) {
	if n < 1 || n > len(c.buttons) {
		return "", false
	}
	return c.buttons[n-1].Payload, true
}
