// Command import bulk-loads catalog records from a JSON file (an array of
// book objects) into the configured backend.
//
// Usage:
//
//	go run scripts/import/main.go -file catalog.json
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/bookwise-discovery-api/internal/config"
	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/repository"
	"github.com/bookwise-discovery-api/internal/repository/postgres"
	sqliterepo "github.com/bookwise-discovery-api/internal/repository/sqlite"
	"github.com/bookwise-discovery-api/internal/services"
	"github.com/bookwise-discovery-api/pkg/schema/db"
)

func main() {
	file := flag.String("file", "", "path to the catalog JSON file")
	flag.Parse()
	if *file == "" {
		log.Fatal("-file is required")
	}

	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}
	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}

	var (
		conn *sqlx.DB
		repo repository.CatalogRepository
	)
	switch cfg.CatalogBackend {
	case "postgres":
		conn, err = db.ConnectPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		repo = postgres.NewCatalogRepository(conn)
	default:
		conn, err = db.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite database: %v", err)
		}
		repo = sqliterepo.NewCatalogRepository(conn)
	}
	defer conn.Close()

	imported := 0
	for i := range books {
		b := books[i]
		if b.SearchText == "" {
			b.SearchText = services.BuildSearchText(&b)
		}
		if err := repo.Create(ctx, &b); err != nil {
			log.Printf("Skipping %s: %v", b.ID, err)
			continue
		}
		imported++
	}
	log.Printf("Imported %d of %d books", imported, len(books))
}
