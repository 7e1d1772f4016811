package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

var addCmd = &cobra.Command{
	Use:   "add <product> <price> [notes...]",
	Short: "Record one purchase directly",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAdd,
}

var addBulkCmd = &cobra.Command{
	Use:   "add-bulk [file]",
	Short: "Record one purchase per line, read from a file or stdin",
	Long: `Each line must parse on its own: "product price [notes]" or a
separated form like "product: price". The whole input commits atomically;
any line that does not parse aborts the batch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAddBulk,
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := buildApp(&consoleTransport{out: os.Stdout})
	if err != nil {
		return err
	}
	defer a.close()

	priceText := strings.TrimSpace(a.norm.Normalize(args[1]))
	price, err := strconv.ParseFloat(priceText, 64)
	if err != nil {
		return fmt.Errorf("price %q is not a number", args[1])
	}
	rec := entity.ParsedRecord{
		Product: args[0],
		Price:   &price,
		Notes:   strings.Join(args[2:], " "),
	}
	if err := common.ValidateProduct(rec.Product); err != nil {
		return err
	}
	if err := common.ValidatePrice(price, a.cfg.Store.MinPrice, a.cfg.Store.MaxPrice); err != nil {
		return err
	}

	stored := entity.NewStoredRecord(rec, time.Now())
	if err := a.store.Append(cmd.Context(), stored); err != nil {
		return err
	}
	fmt.Printf("added %s at %s\n", stored.Product, entity.FormatPrice(stored.Price))
	return nil
}

func runAddBulk(cmd *cobra.Command, args []string) error {
	a, err := buildApp(&consoleTransport{out: os.Stdout})
	if err != nil {
		return err
	}
	defer a.close()

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	batch := a.parser.ParseBatch(string(text))
	if len(batch.Unparsed) > 0 {
		return fmt.Errorf("unparseable lines: %s", strings.Join(batch.Unparsed, "; "))
	}
	if len(batch.Records) == 0 {
		return fmt.Errorf("no records in input")
	}

	now := time.Now()
	stored := make([]entity.StoredRecord, 0, len(batch.Records))
	for _, r := range batch.Records {
		if err := common.ValidatePrice(*r.Price, a.cfg.Store.MinPrice, a.cfg.Store.MaxPrice); err != nil {
			return fmt.Errorf("%s: %w", r.Product, err)
		}
		stored = append(stored, entity.NewStoredRecord(r, now))
	}
	if err := a.store.AppendAll(cmd.Context(), stored); err != nil {
		return err
	}
	fmt.Printf("added %d records\n", len(stored))
	return nil
}
