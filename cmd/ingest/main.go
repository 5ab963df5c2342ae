package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/va6996/boulderagent/config"
	"github.com/va6996/boulderagent/orm"
	"github.com/va6996/boulderagent/plugins/openbeta"
)

// seeds are the hierarchy roots to walk. The Gunks entries are
// sectors (Trapps, Near Trapps, Peterskill) that all sit under the
// Gunks label.
var seeds = []struct {
	UUID string
	Path []string
}{
	{"92aa8885-6ff6-5eaf-bb8c-b93b1f257082", []string{"Powerlinez"}},
	{"593b4f6d-7419-58b2-8ed5-671c61fc726e", []string{"Gunks"}},
	{"f4236a26-3d60-5f21-9922-a982992d9f7a", []string{"Gunks"}},
	{"3e31e342-9908-5969-8082-f5a709280d90", []string{"Gunks"}},
}

func main() {
	// Load .env if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := orm.Open(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to open catalog at %s: %v", cfg.Catalog.Path, err)
	}

	client := openbeta.NewClient(cfg.Ingest.OpenBetaURL)
	walker := openbeta.NewWalker(client, db)

	ctx := context.Background()
	for _, seed := range seeds {
		log.Printf("--- Starting Ingestion for %s ---", seed.Path[len(seed.Path)-1])
		if err := walker.Ingest(ctx, seed.UUID, seed.Path); err != nil {
			log.Fatalf("Ingestion failed for %s: %v", seed.UUID, err)
		}
	}

	log.Println("--- All Database Populations Complete ---")
}
