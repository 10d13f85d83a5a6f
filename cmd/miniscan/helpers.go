package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"miniscan/internal/catalog"
	"miniscan/internal/config"
	"miniscan/internal/match"
)

// openMatcher loads the configured catalogue and indexes it.
func openMatcher(ctx context.Context, cfg *config.Config) (*match.Matcher, error) {
	cat, rep, err := catalog.Open(ctx, cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}
	if rep.TotalFixes() > 0 {
		slog.Debug("catalogue normalised", "fixes", rep.TotalFixes(), "counts", rep.Counts)
	}
	slog.Debug("catalogue loaded", "path", cfg.Catalog.Path, "paints", cat.Len(), "brands", len(cat.Brands()))
	return match.NewMatcher(match.NewIndex(cat), cfg.Washes, cfg.Scan.Match), nil
}

// addCatalogFlag adds --catalog, which overrides catalog.path.
func addCatalogFlag(cmd *cobra.Command) {
	cmd.Flags().String("catalog", "", "paint catalogue (.json or .db)")
}

// checkBrands rejects brands the catalogue does not carry.
func checkBrands(cat *catalog.Catalog, brands []string) error {
	for _, b := range brands {
		if !cat.HasBrand(b) {
			return fmt.Errorf("unknown brand %q (have %v)", b, cat.Brands())
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
