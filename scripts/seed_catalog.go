// seed_catalog.go loads a safeguard evaluation results CSV into Postgres and
// optionally tells running Aegis instances to reload.
//
// Usage:
//
//	go run scripts/seed_catalog.go -csv data/safeguard_evaluation_results.csv -database-url postgres://... -nats nats://localhost:4222
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/MikeSquared-Agency/Aegis/internal/hermes"
	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

func main() {
	csvPath := flag.String("csv", "data/safeguard_evaluation_results.csv", "path to the results CSV")
	dbURL := flag.String("database-url", os.Getenv("AEGIS_DATABASE_URL"), "Postgres connection string")
	natsURL := flag.String("nats", "", "NATS URL; when set, publish a catalog invalidation after seeding")
	dryRun := flag.Bool("dry-run", false, "print rows without writing")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	safeguards, err := store.NewCSVSource(*csvPath).LoadSafeguards(ctx)
	if err != nil {
		log.Fatalf("load csv: %v", err)
	}
	fmt.Printf("Parsed %d safeguards from %s\n", len(safeguards), *csvPath)

	if *dryRun {
		for _, sg := range safeguards {
			fmt.Printf("  %-30s bells=%.3f perf=%.3f api=%t self_hosted=%t rag=%t\n",
				sg.Name, sg.BELLSScore, sg.PerformanceScore, sg.APIAvailable, sg.SelfHosted, sg.RAGCompatible)
		}
		return
	}

	if *dbURL == "" {
		log.Fatal("-database-url or AEGIS_DATABASE_URL is required")
	}
	pg, err := store.NewPostgresSource(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if err := pg.UpsertSafeguards(ctx, safeguards); err != nil {
		log.Fatalf("upsert: %v", err)
	}
	fmt.Printf("Upserted %d safeguards\n", len(safeguards))

	if *natsURL == "" {
		return
	}
	h, err := hermes.NewNATSClient(ctx, *natsURL, slog.Default())
	if err != nil {
		log.Fatalf("connect nats: %v", err)
	}
	defer h.Close()
	if err := h.Publish(hermes.SubjectCatalogInvalidate, hermes.CatalogInvalidateEvent{Reason: "seeded from " + *csvPath}); err != nil {
		log.Fatalf("publish invalidate: %v", err)
	}
	fmt.Println("Published catalog invalidation")
}
