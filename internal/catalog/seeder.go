package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Seeder loads a catalog file and upserts its products.
type Seeder struct {
	loader Loader
	writer ProductWriter
	logger zerolog.Logger
}

// NewSeeder creates a new catalog seeder.
func NewSeeder(loader Loader, writer ProductWriter, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		writer: writer,
		logger: logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Seed upserts every product in path and returns how many were written.
// An empty path is a no-op.
func (s *Seeder) Seed(ctx context.Context, path string) (int, error) {
	if path == "" {
		s.logger.Debug().Msg("no catalog seed path configured")
		return 0, nil
	}

	products, err := s.loader.Load(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(products) == 0 {
		s.logger.Warn().Str("path", path).Msg("catalog file has no products")
		return 0, nil
	}

	if err := s.writer.UpsertMany(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}

	s.logger.Info().Str("path", path).Int("count", len(products)).Msg("catalog seeded")
	return len(products), nil
}
