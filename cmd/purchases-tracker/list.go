package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded purchases",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "show only the most recent N records")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := buildApp(&consoleTransport{out: os.Stdout})
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.store.ReadAll(cmd.Context())
	if err != nil {
		return err
	}
	if listLimit > 0 && len(records) > listLimit {
		records = records[len(records)-listLimit:]
	}
	if len(records) == 0 {
		fmt.Println("no records")
		return nil
	}

	for i, r := range records {
		line := fmt.Sprintf("%d. %s  %s  %s", i+1, r.Date, r.Product, entity.FormatPrice(r.Price))
		if r.Notes != "" {
			line += "  (" + r.Notes + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("%d record(s), store state: %s\n", len(records), a.store.State())
	return nil
}
