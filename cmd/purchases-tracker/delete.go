package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/reconcile"
)

var deleteTarget string

var deleteCmd = &cobra.Command{
	Use:   "delete <numbers...>",
	Short: "Delete purchases by their list numbers",
	Long: `Numbers refer to positions in the listing of the chosen target
("all", "today", or "recent"). Run "list" first to see the numbering.
Example: purchases-tracker delete --target today 1 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteTarget, "target", "all", "which listing the numbers refer to: all, today, or recent")
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := buildApp(&consoleTransport{out: os.Stdout})
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	records, err := a.store.ReadAll(ctx)
	if err != nil {
		return err
	}
	switch deleteTarget {
	case "today":
		today := time.Now().Format(entity.DateLayout)
		filtered := records[:0:0]
		for _, r := range records {
			if r.Date == today {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	case "recent":
		const recentLimit = 10
		if len(records) > recentLimit {
			records = records[len(records)-recentLimit:]
		}
	case "all":
	default:
		return fmt.Errorf("unknown target %q", deleteTarget)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records for target %q", deleteTarget)
	}

	var numbers []int
	for _, arg := range args {
		for _, tok := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return fmt.Errorf("%q is not a list number", tok)
			}
			numbers = append(numbers, n)
		}
	}

	prep := reconcile.PrepareDeletion(records, numbers)
	if len(prep.Invalid) > 0 {
		return fmt.Errorf("numbers out of range: %v (target %q has %d records)", prep.Invalid, deleteTarget, len(records))
	}

	rowIDs := make([]int, len(prep.ToDelete))
	for i, rec := range prep.ToDelete {
		rowIDs[i] = rec.RowID
		fmt.Printf("deleting %s  %s  %s\n", rec.Date, rec.Product, entity.FormatPrice(rec.Price))
	}

	result := reconcile.DeleteRows(ctx, a.store, rowIDs, a.logger)
	fmt.Printf("deleted %d record(s), %d failed\n", result.Succeeded, len(result.Failed))
	if len(result.Failed) > 0 {
		return fmt.Errorf("rows %v could not be deleted", result.Failed)
	}
	return nil
}
