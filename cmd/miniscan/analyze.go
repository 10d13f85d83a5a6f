package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	img "miniscan/internal/image"
	"miniscan/internal/scan"
)

// fileResult pairs an analysed file with its outcome for JSON output.
type fileResult struct {
	File   string       `json:"file"`
	Result *scan.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func analyzeCmd() *cobra.Command {
	var (
		brands       []string
		jsonOutput   bool
		backend      string
		alternatives bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Find the colours on miniature photos and suggest paints",
		Long: `Analyse one or more photos of painted miniatures. Each photo should have a
transparent background. The stand is detected and ignored, the remaining pixels
are grouped into colours, and each colour gets a base/layer/shade/highlight
recipe per brand.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("skip-stand") {
				cfg.Scan.SkipStand, _ = cmd.Flags().GetBool("skip-stand")
			}
			if backend != "" {
				cfg.Scan.Cluster = cfg.Scan.Cluster.WithBackend(backend)
			}
			if len(brands) > 0 {
				cfg.Scan.Brands = brands
			}

			m, err := openMatcher(ctx, cfg)
			if err != nil {
				return err
			}
			if err := checkBrands(m.Index().Catalog(), cfg.Scan.Brands); err != nil {
				return err
			}
			engine, err := scan.New(cfg.Scan, m)
			if err != nil {
				return err
			}

			for _, f := range args {
				if !img.IsSupportedFormat(f) {
					return fmt.Errorf("unsupported image format: %s (supported: %v)", f, img.SupportedFormats())
				}
			}

			var bar *progressbar.ProgressBar
			if len(args) > 1 && !jsonOutput {
				bar = progressbar.NewOptions(len(args),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionShowCount(),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("[cyan][bold]Analysing photos...[reset]"),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer:        "[green]=[reset]",
						SaucerHead:    "[green]>[reset]",
						SaucerPadding: " ",
						BarStart:      "[",
						BarEnd:        "]",
					}))
			}

			results := make([]fileResult, 0, len(args))
			failed := 0
			for _, f := range args {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := engine.AnalyzeFile(ctx, f, nil)
				fr := fileResult{File: f, Result: res}
				if err != nil {
					slog.Warn("analysis failed", "file", f, "error", err)
					fr.Error = err.Error()
					failed++
				}
				results = append(results, fr)
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(os.Stderr)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if len(results) == 1 {
					if err := enc.Encode(results[0]); err != nil {
						return fmt.Errorf("failed to encode result: %w", err)
					}
				} else if err := enc.Encode(results); err != nil {
					return fmt.Errorf("failed to encode results: %w", err)
				}
			} else {
				for i, r := range results {
					if i > 0 {
						fmt.Fprintln(out)
					}
					if r.Error != "" {
						fmt.Fprintln(out, titleStyle.Render(filepath.Base(r.File)))
						fmt.Fprintln(out, errorStyle.Render("  "+r.Error))
						continue
					}
					renderResult(out, filepath.Base(r.File), r.Result, alternatives)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d photos failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&brands, "brand", "b", nil, "brands to build recipes for (default: all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	cmd.Flags().StringVar(&backend, "backend", "", "clustering backend (opencv, go)")
	cmd.Flags().BoolVar(&alternatives, "alternatives", true, "show alternative base paints")
	cmd.Flags().Bool("skip-stand", false, "analyse the whole figure without removing the stand")
	addCatalogFlag(cmd)

	return cmd
}
