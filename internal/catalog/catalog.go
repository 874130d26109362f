package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/model"
)

// Loader reads a catalog file: one JSON product per line, gzip compressed
// when the name ends in ".gz".
type Loader interface {
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// ProductWriter persists seeded products.
type ProductWriter interface {
	UpsertMany(ctx context.Context, products []model.Product) error
}

// decode parses r line by line. Blank lines are skipped.
func decode(ctx context.Context, r io.Reader, name string) ([]model.Product, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	products := []model.Product{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.Product
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("%s line %d: invalid product: %w", name, lineNo, err)
		}
		if err := validate(&p); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, lineNo, err)
		}
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}

	return products, nil
}

func validate(p *model.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if p.ID < 0 {
		return fmt.Errorf("product id must not be negative")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %q: price must not be negative", p.Name)
	}
	return nil
}
