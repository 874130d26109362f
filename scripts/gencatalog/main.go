package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Writes a sample catalog seed file for CATALOG_SEED_PATH.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	products := []model.Product{
		{ID: 1, Name: "Classic White Tee", Price: decimal.RequireFromString("129000"), Image: "/images/tee-white.jpg", BadgeText: "New", BadgeColor: "green"},
		{ID: 2, Name: "Denim Jacket", Price: decimal.RequireFromString("459000"), Image: "/images/denim-jacket.jpg", BadgeText: "Sale", BadgeColor: "red"},
		{ID: 3, Name: "Canvas Sneakers", Price: decimal.RequireFromString("349000"), Image: "/images/sneakers.jpg"},
		{ID: 4, Name: "Wool Beanie", Price: decimal.RequireFromString("89000"), Image: "/images/beanie.jpg", BadgeText: "Limited", BadgeColor: "purple"},
		{ID: 5, Name: "Leather Belt", Price: decimal.RequireFromString("199000"), Image: "/images/belt.jpg"},
	}

	filePath := filepath.Join(dataDir, "products.jsonl.gz")
	if err := writeCatalogFile(filePath, products); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(products))
	fmt.Printf("\nStart the server with CATALOG_SEED_PATH=%s to load it.\n", filePath)
}

func writeCatalogFile(filePath string, products []model.Product) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, p := range products {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to write product %d: %w", p.ID, err)
		}
	}

	return nil
}
