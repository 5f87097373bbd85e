// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/ammerola/warehouse-be/internal/bootstrap"
	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/pkg/config"
	"github.com/ammerola/warehouse-be/internal/pkg/export"
	"github.com/ammerola/warehouse-be/internal/pkg/logger"
)

// SeedStats summarises a seeding run
type SeedStats struct {
	Warehouses int
	Items      int
	Assigned   int
	Skipped    int
}

func main() {
	var (
		numItems      = flag.Int("items", 500, "Number of random items to create")
		numWarehouses = flag.Int("warehouses", 10, "Number of random warehouses to create")
		assignRatio   = flag.Float64("assign", 0.7, "Share of random items placed in a warehouse")
		firstID       = flag.Int("first-id", 1, "First id used for generated records")
		seedValue     = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
		workbook      = flag.String("workbook", "", "Replay an xlsx export instead of generating data")
		logLevel      = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun        = flag.Bool("dry-run", false, "Generate records without writing them")
	)
	flag.Parse()

	l := logger.SetupLogger(*logLevel, "json")
	log := l.Logger

	var (
		items      []domain.InventoryItem
		warehouses []domain.Warehouse
	)
	if *workbook != "" {
		f, err := os.Open(*workbook)
		if err != nil {
			log.Error("Failed to open workbook", slog.String("error", err.Error()))
			os.Exit(1)
		}
		items, warehouses, err = export.ReadWorkbook(f)
		f.Close()
		if err != nil {
			log.Error("Failed to read workbook", slog.String("error", err.Error()))
			os.Exit(1)
		}
		warnListMismatches(log, items, warehouses)
	} else {
		r := rand.New(rand.NewPCG(*seedValue, *seedValue>>1))
		items, warehouses = generate(r, int32(*firstID), *numItems, *numWarehouses, *assignRatio)
	}

	log.Info("Seed data prepared",
		slog.Int("items", len(items)),
		slog.Int("warehouses", len(warehouses)),
		slog.Bool("dry_run", *dryRun))
	if *dryRun {
		return
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg, 2, log)
	if err != nil {
		log.Error("Failed to connect to store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Database.Close()

	// Writes go straight to the store; cached exports expire on their own
	svc := bootstrap.NewService(store, nil, cfg, log)

	stats, err := seed(ctx, svc, items, warehouses, log)
	if err != nil {
		log.Error("Seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("Seeding complete",
		slog.Int("warehouses", stats.Warehouses),
		slog.Int("items", stats.Items),
		slog.Int("assigned", stats.Assigned),
		slog.Int("skipped", stats.Skipped))
}

// generate builds numWarehouses empty warehouses and numItems items, about
// assignRatio of which claim a random warehouse. Ids start at first.
func generate(r *rand.Rand, first int32, numItems, numWarehouses int, assignRatio float64) ([]domain.InventoryItem, []domain.Warehouse) {
	warehouses := make([]domain.Warehouse, numWarehouses)
	for i := range warehouses {
		warehouses[i] = domain.Warehouse{ID: first + int32(i), Items: []int32{}}
	}

	items := make([]domain.InventoryItem, numItems)
	for i := range items {
		item := domain.InventoryItem{
			ID:        first + int32(i),
			Weight:    int16(1 + r.IntN(500)),
			Value:     int16(1 + r.IntN(10000)),
			Transport: domain.Transports[r.IntN(len(domain.Transports))],
			Dimensions: domain.Dimensions{
				Width:  int16(1 + r.IntN(20)),
				Height: int16(1 + r.IntN(20)),
				Depth:  int16(1 + r.IntN(20)),
			},
		}
		if numWarehouses > 0 && r.Float64() < assignRatio {
			item.Warehouse = domain.WarehouseRef(warehouses[r.IntN(numWarehouses)].ID)
		}
		items[i] = item
	}
	return items, warehouses
}

// seed creates the warehouses empty and then the items, letting item
// creation fill in the warehouse lists. Records that already exist are
// skipped.
func seed(ctx context.Context, svc ports.InventoryService, items []domain.InventoryItem, warehouses []domain.Warehouse, log *slog.Logger) (SeedStats, error) {
	var stats SeedStats

	for _, w := range warehouses {
		_, err := svc.CreateWarehouse(ctx, &domain.Warehouse{ID: w.ID, Items: []int32{}})
		switch {
		case err == nil:
			stats.Warehouses++
		case domain.KindOf(err) == domain.KindConflict:
			log.Warn("Warehouse already exists", slog.Int("warehouse_id", int(w.ID)))
			stats.Skipped++
		default:
			return stats, fmt.Errorf("failed to create warehouse %d: %w", w.ID, err)
		}
	}

	for i := range items {
		item := items[i]
		if _, err := svc.GetItem(ctx, item.ID); err == nil {
			log.Warn("Item already exists", slog.Int("item_id", int(item.ID)))
			stats.Skipped++
			continue
		} else if domain.KindOf(err) != domain.KindNotFound {
			return stats, fmt.Errorf("failed to check item %d: %w", item.ID, err)
		}

		if _, err := svc.CreateItem(ctx, &item); err != nil {
			return stats, fmt.Errorf("failed to create item %d: %w", item.ID, err)
		}
		stats.Items++
		if item.Warehouse != nil {
			stats.Assigned++
		}
	}

	return stats, nil
}

// warnListMismatches reports warehouse list entries the replay will not
// reproduce because the item does not claim that warehouse.
func warnListMismatches(log *slog.Logger, items []domain.InventoryItem, warehouses []domain.Warehouse) {
	claims := make(map[int32]*int32, len(items))
	for i := range items {
		claims[items[i].ID] = items[i].Warehouse
	}
	for _, w := range warehouses {
		for _, id := range w.Items {
			if claim, ok := claims[id]; !ok || claim == nil || *claim != w.ID {
				log.Warn("Warehouse lists an item that does not claim it",
					slog.Int("warehouse_id", int(w.ID)),
					slog.Int("item_id", int(id)))
			}
		}
	}
}
