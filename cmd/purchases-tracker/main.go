// Command purchases-tracker is the purchases bot's command line frontend:
// record purchases from free-form text, list what was recorded, delete
// entries, or hold a full conversation in the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "purchases-tracker",
	Short:         "Track purchases from free-form chat messages",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(addCmd, addBulkCmd, listCmd, deleteCmd, chatCmd, exportCmd, syncCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
