// Package report renders fit and search results as markdown for audit
// hand-off, with optional HTML rendering for the API surface.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"stablebin/app"
	"stablebin/domain/stability"
)

// BuildFitReport renders one fit result as a markdown document: the bin
// summary, the WoE table, stability metrics, and any guard warnings.
func BuildFitReport(result *app.FitResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Binning report: %s\n\n", result.Feature)
	fmt.Fprintf(&b, "- Composite score: %.4f\n", result.Score)
	fmt.Fprintf(&b, "- Direction: %s\n", result.Direction)
	fmt.Fprintf(&b, "- Bins: %d\n", result.BinSet.Len())
	if result.Degenerate {
		b.WriteString("- **Degenerate**: refinement collapsed to a single bin\n")
	}
	b.WriteString("\n## Bins\n\n")
	b.WriteString("| # | Bin | Count | Events | Event rate | WoE |\n")
	b.WriteString("|---|-----|-------|--------|------------|-----|\n")
	for i, bin := range result.BinSet.Bins {
		woe := 0.0
		if v, ok := result.WoE.Transform(i); ok {
			woe = v
		}
		fmt.Fprintf(&b, "| %d | %s | %d | %d | %.4f | %.4f |\n",
			i, bin.Label(), bin.Count, bin.Events, bin.EventRate(), woe)
	}

	m := result.Metrics
	b.WriteString("\n## Stability\n\n")
	fmt.Fprintf(&b, "- IV: %.4f\n", result.WoE.IV)
	fmt.Fprintf(&b, "- KS: %.4f\n", m.KS)
	fmt.Fprintf(&b, "- Temporal separability: %.4f\n", m.Separability)
	fmt.Fprintf(&b, "- PSI mean / max: %.4f / %.4f\n", m.PSIMean, m.PSIMax)
	if m.EpsilonSubstitutions > 0 {
		fmt.Fprintf(&b, "- Epsilon substitutions: %d\n", m.EpsilonSubstitutions)
	}

	if len(m.Cohorts) > 1 {
		b.WriteString("\n### Event rate by cohort\n\n")
		b.WriteString("| Bin | " + strings.Join(m.Cohorts, " | ") + " |\n")
		b.WriteString("|-----|" + strings.Repeat("------|", len(m.Cohorts)) + "\n")
		for i, series := range m.RatesByBin {
			cells := make([]string, len(series))
			for c, rate := range series {
				cells[c] = fmt.Sprintf("%.4f", rate)
			}
			fmt.Fprintf(&b, "| %d | %s |\n", i, strings.Join(cells, " | "))
		}
	}

	warnings := append(append([]string(nil), result.Warnings...), m.Warnings...)
	if len(warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

// BuildSearchReport renders a search run's trial history.
func BuildSearchReport(result *app.SearchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Search run %s\n\n", result.RunID)
	fmt.Fprintf(&b, "- Trials: %d (%d failed)\n", len(result.Trials), result.Failed)
	if result.Best != nil {
		fmt.Fprintf(&b, "- Best trial: %d, score %.4f\n", result.Best.Number, result.Best.Score)
	}

	b.WriteString("\n## Trials\n\n")
	b.WriteString("| # | max_bins | min_bin_size | min_er_diff | score | sep | IV | KS | bins | status |\n")
	b.WriteString("|---|----------|--------------|-------------|-------|-----|----|----|------|--------|\n")
	for _, t := range result.Trials {
		b.WriteString(trialRow(t))
	}

	if result.BestFit != nil {
		b.WriteString("\n")
		b.WriteString(BuildFitReport(result.BestFit))
	}
	return b.String()
}

func trialRow(t stability.Trial) string {
	status := "ok"
	score := fmt.Sprintf("%.4f", t.Score)
	if t.Failed {
		status = "failed: " + t.FailureReason
		score = "-inf"
	}
	return fmt.Sprintf("| %d | %d | %.4f | %.4f | %s | %.4f | %.4f | %.4f | %d | %s |\n",
		t.Number, t.Params.MaxBins, t.Params.MinBinSize, t.Params.MinEventRateDiff,
		score, t.Separability, t.IV, t.KS, t.Bins, status)
}

// RenderHTML converts a markdown report to HTML.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
