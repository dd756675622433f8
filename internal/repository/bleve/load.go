package bleve

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/bookwise-discovery-api/internal/models"
)

// LoadFile seeds the in-process catalog from a JSON file holding an array of
// books. Records without a precomputed search text get one derived from
// their descriptive fields.
func (r *CatalogRepository) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read catalog file: %w", err)
	}
	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return 0, fmt.Errorf("parse catalog file: %w", err)
	}
	for i := range books {
		if books[i].SearchText == "" {
			b := &books[i]
			b.SearchText = strings.Join([]string{b.Title, b.Author, b.Publisher, b.Subject}, " ")
		}
	}
	if err := r.Load(ctx, books); err != nil {
		return 0, err
	}
	return len(books), nil
}
