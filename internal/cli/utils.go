// Package cli formats VoteSathi command output.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/votesathi/internal/booths"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/ranking"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json", case-insensitively.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

const rule = "─────────────────────────────────────────────────────────"

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteBooths writes booth search results to w in the given format.
func WriteBooths(w io.Writer, results []models.ScoredBooth, locale string, format OutputFormat) error {
	if format == OutputJSON {
		if results == nil {
			results = []models.ScoredBooth{}
		}
		return writeJSON(w, map[string]interface{}{"results": results, "total": len(results)})
	}
	fmt.Fprintf(w, "\nFound %d polling stations\n\n", len(results))
	for i, r := range results {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", i+1, r.Score)
		fmt.Fprintf(w, "%s\n\n", booths.Format(r.Booth, locale))
	}
	return nil
}

type explainedResult struct {
	ID            string             `json:"id"`
	StationNumber int                `json:"station_number"`
	Title         string             `json:"title"`
	Score         float64            `json:"score"`
	Signals       map[string]float64 `json:"signals"`
}

// WriteExplain writes ranked results with their per-signal scores.
func WriteExplain(w io.Writer, results []*ranking.RankedResult, format OutputFormat) error {
	out := make([]explainedResult, len(results))
	for i, r := range results {
		e := explainedResult{ID: r.Booth.ID, StationNumber: r.Booth.StationNumber, Title: r.Booth.Title, Score: r.Score}
		if r.Breakdown != nil {
			e.Signals = r.Breakdown.Signals
		}
		out[i] = e
	}
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"results": out, "total": len(out)})
	}
	fmt.Fprintf(w, "\n%d ranked polling stations\n\n", len(out))
	for i, e := range out {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | Station %d: %s\n", i+1, e.Score, e.StationNumber, e.Title)
		names := make([]string, 0, len(e.Signals))
		for name := range e.Signals {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-10s %.4f\n", name, e.Signals[name])
		}
	}
	fmt.Fprintln(w)
	return nil
}

// WriteExtraction writes a document extraction result.
func WriteExtraction(w io.Writer, res *models.VisionExtractionResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "\nDocument: %s (confidence %.2f)\n", res.DocumentType.DisplayName(), res.Confidence)
	fmt.Fprintln(w, rule)
	for _, f := range res.Fields {
		fmt.Fprintf(w, "%-18s %s (%.2f)\n", f.Name, f.Value, f.Confidence)
	}
	if len(res.MissingFields) > 0 {
		fmt.Fprintf(w, "Missing: %s\n", strings.Join(res.MissingFields, ", "))
	}
	for _, ve := range res.ValidationErrors {
		fmt.Fprintf(w, "Invalid %s: %s\n", ve.Field, ve.Error)
	}
	fmt.Fprintf(w, "\n%s\n", res.Explanation)
	return nil
}

// WriteAnswer writes an assistant response.
func WriteAnswer(w io.Writer, resp *models.ChatResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\n%s\n\n", resp.Text)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Route: %s | Confidence: %.2f", resp.RouterType, resp.Confidence)
	if resp.Escalate {
		fmt.Fprint(w, " | escalated to a human officer")
	}
	fmt.Fprintln(w)
	for _, src := range resp.Sources {
		if src.URL != "" {
			fmt.Fprintf(w, "  - %s <%s>\n", src.Title, src.URL)
			continue
		}
		fmt.Fprintf(w, "  - %s\n", src.Title)
	}
	return nil
}
