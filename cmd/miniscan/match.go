package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"miniscan/internal/family"
	"miniscan/internal/match"
	"miniscan/pkg/colorutil"
)

func matchCmd() *cobra.Command {
	var (
		brands     []string
		metal      bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "match <hex>",
		Short: "Suggest paints for a single colour",
		Long:  `Build base/layer/shade/highlight recipes for one colour given as #rrggbb.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rgb, err := colorutil.ParseHex(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			m, err := openMatcher(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cat := m.Index().Catalog()
			want := brands
			if len(want) == 0 {
				want = cfg.Scan.Brands
			}
			if len(want) == 0 {
				want = cat.Brands()
			}
			if err := checkBrands(cat, want); err != nil {
				return err
			}

			in := family.InputFromRGB(rgb)
			in.Metallic = metal
			fam := family.New(cfg.Scan.Family).Classify(in)
			target := match.Target{LAB: in.LAB, Metallic: metal, Family: fam.Family}

			triads := make([]match.Triad, 0, len(want))
			for _, b := range want {
				t, err := m.Triad(target, b)
				if err != nil {
					return fmt.Errorf("failed to match %s: %w", b, err)
				}
				triads = append(triads, t)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Hex    string        `json:"hex"`
					Family string        `json:"family"`
					Triads []match.Triad `json:"triads"`
				}{rgb.Hex(), fam.Family, triads})
			}

			fmt.Fprintf(out, "%s %s %s\n", swatch(rgb.Hex()), titleStyle.Render(rgb.Hex()),
				subtleStyle.Render(fmt.Sprintf("%s (%.0f%%)", fam.Family, fam.Confidence*100)))
			for _, t := range triads {
				renderTriad(out, t, true)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&brands, "brand", "b", nil, "brands to build recipes for (default: all)")
	cmd.Flags().BoolVar(&metal, "metallic", false, "treat the colour as a metallic surface")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	addCatalogFlag(cmd)

	return cmd
}
