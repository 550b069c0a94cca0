package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"fieldsync/core/config"
	"fieldsync/core/queue"
	"fieldsync/core/remote"
)

// Dumps the raw queue store and, for status updates, the backend record the
// conflict guard compares against. Pass an item id to inspect a single item.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	store, closeStore, err := queue.Open(cfg.Queue, cfg.Database, cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	backend, closeBackend, err := remote.Open(ctx, cfg.Remote, cfg.Backend)
	if err != nil {
		log.Fatal(err)
	}
	defer closeBackend()

	// Test 1: raw store contents, without the manager's mirror
	fmt.Println("=== TEST 1: Store Contents ===")
	if err := store.Initialize(ctx); err != nil {
		log.Fatal(err)
	}
	items, err := store.GetAll(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Total items stored: %d\n", len(items))

	var target string
	if len(os.Args) > 1 {
		target = os.Args[1]
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for _, item := range items {
		if target != "" && item.ID != target {
			continue
		}
		fmt.Printf("\n--- %s (%s) synced=%v attempts=%d ---\n", item.ID, item.Type, item.Synced, item.SyncAttempts)
		_ = enc.Encode(item)

		// Test 2: what the conflict guard would see
		if item.Type != queue.TypeStatusUpdate {
			continue
		}
		var update struct {
			WorkOrderID string `json:"work_order_id"`
		}
		if err := json.Unmarshal(item.Payload, &update); err != nil || update.WorkOrderID == "" {
			fmt.Println("payload has no work_order_id")
			continue
		}
		rec, err := backend.Get(ctx, remote.CollectionWorkOrders, update.WorkOrderID)
		if err != nil {
			fmt.Printf("backend lookup failed: %v\n", err)
			continue
		}
		fmt.Printf("server updated_at=%s enqueued_at=%s newer=%v\n",
			rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			item.EnqueuedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			rec.UpdatedAt.After(item.EnqueuedAt))
	}
}
