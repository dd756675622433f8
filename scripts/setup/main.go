// Command setup creates the catalog schema and optionally seeds a small
// sample catalog for local development.
//
// Usage:
//
//	go run scripts/setup/main.go [-seed]
package main

import (
	"context"
	"flag"
	"log"

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

var sampleBooks = []models.Book{
	{ID: "bk-001", Title: "三體", Author: "劉慈欣", Publisher: "重慶出版社", Subject: "小说", Language: "zh", Popularity: 9.2, Available: true},
	{ID: "bk-002", Title: "活着", Author: "余华", Publisher: "作家出版社", Subject: "小说", Language: "zh", Popularity: 8.9, Available: true},
	{ID: "bk-003", Title: "万历十五年", Author: "黄仁宇", Publisher: "中华书局", Subject: "历史", Language: "zh", Popularity: 8.4, Available: true},
	{ID: "bk-004", Title: "The Pragmatic Programmer", Author: "David Thomas", Publisher: "Addison-Wesley", Subject: "computing", Language: "en", Popularity: 8.7, Available: true},
	{ID: "bk-005", Title: "A Brief History of Time", Author: "Stephen Hawking", Publisher: "Bantam", Subject: "science", Language: "en", Popularity: 8.1, Available: true},
	{ID: "bk-006", Title: "红楼梦", Author: "曹雪芹", Publisher: "人民文学出版社", Subject: "文学", Language: "zh", Popularity: 9.5, Available: true},
}

func main() {
	seed := flag.Bool("seed", false, "insert the sample catalog after creating the schema")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	var (
		conn *sqlx.DB
		repo repository.CatalogRepository
		err  error
	)
	switch cfg.CatalogBackend {
	case "postgres":
		conn, err = db.ConnectPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		if _, err := conn.ExecContext(ctx, db.PostgresSchema); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		repo = postgres.NewCatalogRepository(conn)
	default:
		// ConnectSQLite applies the schema itself.
		conn, err = db.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite database: %v", err)
		}
		repo = sqliterepo.NewCatalogRepository(conn)
	}
	defer conn.Close()

	log.Printf("Schema ready (%s backend)", cfg.CatalogBackend)

	if !*seed {
		return
	}
	for i := range sampleBooks {
		b := sampleBooks[i]
		b.SearchText = services.BuildSearchText(&b)
		if err := repo.Create(ctx, &b); err != nil {
			log.Printf("Skipping %s: %v", b.ID, err)
			continue
		}
		log.Printf("Seeded %s (%s)", b.ID, b.Title)
	}
}
