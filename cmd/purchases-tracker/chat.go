package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adel-hamdan/purchases-tracker/internal/workflow"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot interactively in the terminal",
	Long: `Runs the full conversational flow on stdin/stdout. Type a purchase
("كولا ٢٣", "تفاح", a multi-line paste, ...) and follow the prompts. When a
reply offers a numbered menu, type the number to press that button.

Commands inside the chat:
  /start          reset the conversation
  /cancel         cancel the current operation
  /delete         delete from all records
  /delete today   delete from today's records
  /delete recent  delete from the most recent records
  /quit           leave the chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	transport := &consoleTransport{out: os.Stdout}
	a, err := buildApp(transport)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	const session = "console"

	if err := a.workflow.Welcome(ctx, session); err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/start":
			err = a.workflow.Welcome(ctx, session)
		case line == "/cancel":
			err = a.workflow.Cancel(ctx, session)
		case line == "/delete":
			err = a.workflow.StartDeletion(ctx, session, "")
		case line == "/delete today":
			err = a.workflow.StartDeletion(ctx, session, workflow.DeleteToday)
		case line == "/delete recent":
			err = a.workflow.StartDeletion(ctx, session, workflow.DeleteRecent)
		default:
			if n, convErr := strconv.Atoi(line); convErr == nil {
				if payload, ok := transport.payloadFor(n); ok {
					err = a.workflow.HandleButton(ctx, session, payload)
					break
				}
			}
			err = a.workflow.HandleMessage(ctx, session, line)
		}
		if err != nil {
			a.logger.Error("chat turn failed", "error", err)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}
