package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/export"
)

var (
	exportOut  string
	exportFrom string
	exportTo   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an XLSX purchases report",
	Long: `Exports recorded purchases to a standalone XLSX report with a total
row. Dates use the YYYY/MM/DD format, e.g. --from 2026/08/01.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "purchases-report.xlsx", "output file path")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "start date (inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "end date (inclusive)")
}

func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(entity.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("date %q must be in YYYY/MM/DD form", value)
	}
	return &t, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := buildApp(&consoleTransport{out: os.Stdout})
	if err != nil {
		return err
	}
	defer a.close()

	from, err := parseDateFlag(exportFrom)
	if err != nil {
		return err
	}
	to, err := parseDateFlag(exportTo)
	if err != nil {
		return err
	}

	svc := export.NewService(a.store, a.logger)
	data, err := svc.ExportXLSX(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", exportOut, len(data))
	return nil
}
