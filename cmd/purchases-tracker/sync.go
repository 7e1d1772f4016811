package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay cached purchases into the workbook",
	Long: `While the workbook is unreachable, new purchases are kept in the
local cache. Once the workbook is back, sync replays them into it and
empties the cache.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := buildApp(&consoleTransport{out: os.Stdout})
	if err != nil {
		return err
	}
	defer a.close()

	n, err := a.store.Flush(cmd.Context())
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("cache empty, nothing to replay")
		return nil
	}
	fmt.Printf("replayed %d cached record(s) into the workbook\n", n)
	return nil
}
