// Command verify runs a read-only sanity check over an ingested
// catalog: row counts, hierarchy breakdown, and coordinate coverage.
package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/va6996/boulderagent/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", cfg.Catalog.Path))
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer db.Close()

	fmt.Println("--- Database Sanity Check ---")

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM boulders").Scan(&total); err != nil {
		log.Fatalf("Count failed: %v", err)
	}
	fmt.Printf("Total Boulders Ingested: %d\n", total)

	fmt.Println("\n--- Breakdown by Area and Sub-Area ---")
	rows, err := db.Query("SELECT area, sub_area, COUNT(*) FROM boulders GROUP BY area, sub_area")
	if err != nil {
		log.Fatalf("Breakdown failed: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var area, subArea sql.NullString
		var count int
		if err := rows.Scan(&area, &subArea, &count); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("[%s] -> %s: %d boulders\n", area.String, subArea.String, count)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Breakdown failed: %v", err)
	}

	var missingGPS int
	if err := db.QueryRow("SELECT COUNT(*) FROM boulders WHERE lat IS NULL OR lng IS NULL").Scan(&missingGPS); err != nil {
		log.Fatalf("Coverage check failed: %v", err)
	}
	fmt.Printf("\nBoulders missing GPS: %d\n", missingGPS)

	var areas int
	if err := db.QueryRow("SELECT COUNT(*) FROM areas").Scan(&areas); err != nil {
		log.Fatalf("Area count failed: %v", err)
	}
	fmt.Printf("Areas Ingested: %d\n", areas)
}
