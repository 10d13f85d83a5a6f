package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"miniscan/internal/catalog"
	"miniscan/internal/config"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and convert paint catalogues",
		Long:  `Validate raw catalogue files, write cleaned copies, and import them into the SQLite store.`,
	}

	cmd.AddCommand(validateCatalogCmd())
	cmd.AddCommand(cleanCatalogCmd())
	cmd.AddCommand(importCatalogCmd())

	return cmd
}

func validateCatalogCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <paints.json>",
		Short: "Report problems in a raw catalogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := catalog.ReadRecords(args[0])
			if err != nil {
				return err
			}
			st := catalog.Validate(records)

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			renderStats(out, st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	return cmd
}

func cleanCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <in.json> <out.json>",
		Short: "Write a normalised copy of a catalogue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := catalog.ReadRecords(args[0])
			if err != nil {
				return err
			}
			paints, rep := catalog.Normalize(records)
			if err := catalog.WriteRecords(args[1], catalog.New(paints).Records()); err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
}

func importCatalogCmd() *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "import <paints.json>",
		Short: "Normalise a catalogue and store it in SQLite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if db == "" {
				db = cfg.Catalog.DB
			}
			db = config.ExpandPath(db)

			cat, rep, err := catalog.LoadJSON(args[0])
			if err != nil {
				return err
			}

			store, err := catalog.OpenSQLite(db)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			if err := store.Replace(ctx, cat.Records()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderReport(out, rep)
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Imported %d paints into %s", cat.Len(), db)))
			return nil
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "SQLite database (default: catalog.db from config)")
	return cmd
}
