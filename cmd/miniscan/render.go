package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"miniscan/internal/catalog"
	"miniscan/internal/match"
	"miniscan/internal/scan"
)

func renderResult(w io.Writer, name string, r *scan.Result, alternatives bool) {
	fmt.Fprintln(w, titleStyle.Render(name))
	if r.Gated {
		fmt.Fprintln(w, warningStyle.Render("  photo failed the quality check; nothing analysed"))
		return
	}

	stand := "not detected"
	if r.StandValidated {
		stand = fmt.Sprintf("removed %.1f%%", r.StandRemoved)
	} else if r.StandReason != "" {
		stand = "kept (" + r.StandReason + ")"
	}
	fmt.Fprintln(w, subtleStyle.Render(fmt.Sprintf("  %dx%d, %d pixels analysed, stand %s",
		r.Width, r.Height, r.Pixels, stand)))

	if len(r.Colours) == 0 {
		fmt.Fprintln(w, warningStyle.Render("  no colours found"))
		return
	}

	for _, c := range r.Colours {
		fmt.Fprintln(w)
		kind := "major"
		if c.IsDetail {
			kind = "detail"
		}
		traits := []string{kind, string(c.Temperature), string(c.ShadeType.Type) + " shading"}
		if c.Metallic {
			traits = append(traits, "metallic")
		}
		if c.Surface != "" {
			traits = append(traits, string(c.Surface))
		}
		fmt.Fprintf(w, "  %s %s %5.1f%%  %s  %s\n",
			swatch(c.RGB.Hex()),
			headerStyle.Render(fmt.Sprintf("%-14s", c.Family)),
			c.Coverage,
			c.RGB.Hex(),
			subtleStyle.Render(strings.Join(traits, ", ")))

		for _, t := range c.Triads {
			renderTriad(w, t, alternatives)
		}
	}
}

func renderTriad(w io.Writer, t match.Triad, alternatives bool) {
	fmt.Fprintf(w, "    %s\n", headerStyle.Render(t.Brand))
	for _, r := range t.Roles() {
		m := r.Match
		fmt.Fprintf(w, "      %s%s %s %s\n",
			roleStyle.Render(r.Name),
			swatch(m.Paint.Hex),
			m.Paint.Name,
			subtleStyle.Render(fmt.Sprintf("ΔE %.1f", m.DeltaE)))
		if !alternatives || len(m.Alternatives) == 0 {
			continue
		}
		names := make([]string, len(m.Alternatives))
		for i, a := range m.Alternatives {
			names[i] = fmt.Sprintf("%s (%.1f)", a.Paint.Name, a.DeltaE)
		}
		fmt.Fprintf(w, "      %s%s\n", roleStyle.Render("  or"), subtleStyle.Render(strings.Join(names, ", ")))
	}
}

func renderStats(w io.Writer, st catalog.Stats) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d paints", st.Total)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", headerStyle.Render("Brand"), headerStyle.Render("Paints"))
	for _, b := range sortedKeys(st.ByBrand) {
		fmt.Fprintf(tw, "%s\t%d\n", b, st.ByBrand[b])
	}
	fmt.Fprintf(tw, "%s\t%s\n", headerStyle.Render("Category"), "")
	for _, c := range sortedKeys(st.ByCategory) {
		fmt.Fprintf(tw, "%s\t%d\n", c, st.ByCategory[c])
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "Top families: %s\n", strings.Join(st.TopFamilies(5), ", "))

	if st.Clean() {
		fmt.Fprintln(w, successStyle.Render("No issues found"))
		return
	}
	problems := []struct {
		label string
		n     int
	}{
		{"null names", st.NullNames},
		{"invalid hex", st.InvalidHex},
		{"washes labelled opaque", len(st.WashesAsOpaque)},
		{"mislabelled achromatics", len(st.AchromaticMislabel)},
	}
	for _, p := range problems {
		if p.n > 0 {
			fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("  %d %s", p.n, p.label)))
		}
	}
	for _, is := range slices.Concat(st.WashesAsOpaque, st.AchromaticMislabel) {
		fmt.Fprintln(w, subtleStyle.Render(fmt.Sprintf("    #%d %s: %s", is.Index, is.Paint, is.Problem)))
	}
}

func renderReport(w io.Writer, rep catalog.Report) {
	if rep.TotalFixes() == 0 {
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("%d paints, no fixes needed", rep.Total)))
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d paints, %d fixes", rep.Total, rep.TotalFixes())))
	for _, k := range sortedKeys(rep.Counts) {
		fmt.Fprintf(w, "  %-18s %d\n", k, rep.Counts[k])
	}
}
