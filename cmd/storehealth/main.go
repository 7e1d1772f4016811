// Command storehealth verifies that both stores are reachable and reports
// their row counts. Exit code 0 means healthy.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/store"
)

func main() {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	workbook, err := store.NewWorkbook(cfg.Store, nil)
	if err != nil {
		log.Fatalf("workbook health: FAIL (%v)", err)
	}
	n, err := workbook.RowCount(ctx)
	if err != nil {
		log.Fatalf("workbook health: FAIL (%v)", err)
	}
	log.Printf("workbook health: OK (%s, %d rows including header)", cfg.Store.WorkbookPath, n)

	cache, err := store.OpenCache(cfg.Store.CachePath, nil)
	if err != nil {
		log.Fatalf("cache health: FAIL (%v)", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			log.Printf("ERROR: closing cache: %v", err)
		}
	}()
	m, err := cache.RowCount(ctx)
	if err != nil {
		log.Fatalf("cache health: FAIL (%v)", err)
	}
	log.Printf("cache health: OK (%s, %d rows including virtual header)", cfg.Store.CachePath, m)

	records, err := workbook.ReadAll(ctx)
	if err != nil {
		log.Fatalf("workbook read: FAIL (%v)", err)
	}
	log.Printf("readable records: %d", len(records))
}
