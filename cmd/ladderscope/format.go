package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ladderscope/internal/api"
	"ladderscope/internal/ingest"
	"ladderscope/internal/pattern"
	"ladderscope/internal/predict"
	"ladderscope/internal/storage"
	"ladderscope/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatJSON outputs indented JSON
	FormatJSON OutputFormat = "json"
	// FormatHuman outputs human-readable text
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats response as indented JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case predict.PredictionView:
		return formatPredictionHuman(v), nil
	case *predict.RankResult:
		return formatRankHuman(v), nil
	case *predict.GroupResult:
		return formatGroupHuman(v), nil
	case *predict.Stats:
		return formatStatsHuman(v), nil
	case api.StatsResponse:
		return formatStatsHuman(v.Stats) + formatBatchesHuman(v.RecentBatches), nil
	case api.PresetsResponse:
		return formatPresetsHuman(v), nil
	case *ingest.Result:
		return formatImportHuman(v), nil
	case PruneResult:
		return formatPruneHuman(v), nil
	case TokenResult:
		return formatTokenHuman(v), nil
	case version.Build:
		return version.Full(), nil
	default:
		return formatJSON(resp)
	}
}

func header(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
}

func rankedLine(r pattern.Ranked) string {
	return fmt.Sprintf("%-4s %s", r.Symbol.Short(), r.Symbol.Hangul())
}

func formatPredictionHuman(v predict.PredictionView) string {
	var b strings.Builder
	header(&b, fmt.Sprintf("Prediction for round %d (%s)", v.NextRound, v.Mode))

	b.WriteString(fmt.Sprintf("Block:   %s\n", v.Block))
	b.WriteString(fmt.Sprintf("History: %d rounds\n", v.Rounds))
	b.WriteString(fmt.Sprintf("Matches: %d\n\n", v.TotalMatches))

	for _, e := range v.Predictions {
		if e.Position == nil {
			b.WriteString("  no earlier occurrence of this block\n")
			continue
		}
		b.WriteString(fmt.Sprintf("  #%-5d next %-12s block %s\n", *e.Position, e.Value, e.Block))
	}

	for _, side := range []pattern.Direction{pattern.Above, pattern.Below} {
		s, ok := v.Summary[side.String()]
		if !ok || s.TotalMatches == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s: %d matches, positions %d-%d, predicted %d",
			side, s.TotalMatches, s.MinPosition, s.MaxPosition, s.Predicted))
	}
	b.WriteString("\n")
	return b.String()
}

func formatRankHuman(r *predict.RankResult) string {
	var b strings.Builder
	header(&b, fmt.Sprintf("Ranking for round %d (%s, top %d)", r.NextRound, r.Direction, r.TopK))

	for _, p := range r.Pairs {
		if p.Skipped {
			b.WriteString(fmt.Sprintf("%-22s skipped (history shorter than block)\n", p.Mode))
			continue
		}
		b.WriteString(fmt.Sprintf("%-22s %d matches\n", p.Mode, p.Matches))
		for _, rk := range p.Ranking {
			b.WriteString(fmt.Sprintf("    %s  %d\n", rankedLine(rk), rk.Value))
		}
	}

	b.WriteString("\nCombined:\n")
	for i, rk := range r.Combined {
		b.WriteString(fmt.Sprintf("  %d. %s  %d\n", i+1, rankedLine(rk), rk.Value))
	}
	return b.String()
}

func formatGroupHuman(g *predict.GroupResult) string {
	var b strings.Builder
	header(&b, fmt.Sprintf("Group for round %d (%s, %s, preset %s)", g.NextRound, g.Flavor, g.Direction, g.Policy))

	if g.Insufficient != nil {
		b.WriteString(fmt.Sprintf("Insufficient data: %s\n", g.Insufficient.Message))
		return b.String()
	}

	gr := g.Grouping
	for _, m := range gr.Group {
		b.WriteString(fmt.Sprintf("  %d. %-4s %s  %s\n", m.Rank, m.Symbol.Short(), m.Symbol.Hangul(), memberNote(g.Flavor, m)))
	}
	b.WriteString(fmt.Sprintf("\nExcluded:   %s %s (%s)\n", gr.Excluded.Symbol.Short(), gr.Excluded.Symbol.Hangul(), memberNote(g.Flavor, gr.Excluded)))
	b.WriteString(fmt.Sprintf("Dispersion: %s (max share %.0f%%)\n", gr.Dispersion, gr.MaxShare*100))
	return b.String()
}

// memberNote renders the annotation the flavor asks for.
func memberNote(f pattern.Flavor, m pattern.Member) string {
	switch f {
	case pattern.FlavorPercent:
		return fmt.Sprintf("%d, %.1f%%", m.Value, m.Percent)
	case pattern.FlavorBorda:
		return fmt.Sprintf("%d pts", m.Value)
	default:
		return fmt.Sprintf("%d", m.Value)
	}
}

func formatStatsHuman(s *predict.Stats) string {
	var b strings.Builder
	header(&b, "Round history")

	if s.Stored >= 0 {
		b.WriteString(fmt.Sprintf("Stored:      %d rounds\n", s.Stored))
	}
	b.WriteString(fmt.Sprintf("Window:      %d rounds\n", s.Window))
	if s.Window > 0 {
		b.WriteString(fmt.Sprintf("Latest:      round %d (%s)\n", s.LatestRound, s.LatestRegistered))
	}
	b.WriteString(fmt.Sprintf("Next round:  %d\n", s.NextRound))

	if len(s.Distribution) > 0 {
		b.WriteString("\nDistribution:\n")
		for _, rk := range s.Distribution {
			b.WriteString(fmt.Sprintf("  %s  %d\n", rankedLine(rk), rk.Value))
		}
	}
	return b.String()
}

func formatBatchesHuman(batches []storage.IngestBatch) string {
	if len(batches) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nRecent imports:\n")
	for _, ib := range batches {
		b.WriteString(fmt.Sprintf("  %s  %d received, %d new, %d updated (%s)\n",
			ib.IngestedAt.UTC().Format(time.DateTime), ib.Received, ib.Inserted, ib.Updated, ib.Source))
	}
	return b.String()
}

func formatPresetsHuman(p api.PresetsResponse) string {
	var b strings.Builder
	header(&b, "Exclusion presets")

	if p.Source != "" {
		b.WriteString(fmt.Sprintf("Loaded from %s\n\n", p.Source))
	}
	for _, info := range p.Presets {
		marker := " "
		if info.Default {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s %-14s threshold %.2f  %s\n", marker, info.Name, info.Threshold, strings.Join(info.Members, " ")))
	}
	return b.String()
}

func formatImportHuman(r *ingest.Result) string {
	return fmt.Sprintf("Imported %d rounds from %s: %d new, %d updated (batch %s)\n",
		r.Received, r.Source, r.Inserted, r.Updated, r.BatchID)
}

// printResponse writes resp in the --format output format.
func printResponse(resp interface{}) error {
	out, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	fmt.Println(strings.TrimRight(out, "\n"))
	return nil
}
