package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"dailytens/domain/game"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// ResolveOutput is a resolution as printed by the resolve command
type ResolveOutput struct {
	RequestedDate string       `json:"requestedDate"`
	ResolvedDate  string       `json:"resolvedDate"`
	Source        string       `json:"source"`
	Game          *game.Record `json:"game"`
}

func writeResolve(w io.Writer, out *ResolveOutput, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, out)
	}

	fmt.Fprintf(w, "Requested: %s\n", out.RequestedDate)
	fmt.Fprintf(w, "Resolved:  %s (%s)\n", out.ResolvedDate, out.Source)
	writeBoard(w, out.Game.Title, out.Game.CorrectAnswers)
	return nil
}

func writeCandidate(w io.Writer, c *game.Candidate, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, c)
	}
	writeBoard(w, c.Title, c.CorrectAnswers)
	return nil
}

func writeBoard(w io.Writer, title string, answers []string) {
	fmt.Fprintf(w, "Title:     %s\n", title)
	for i, a := range answers {
		fmt.Fprintf(w, "%3d. %s\n", i+1, a)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
