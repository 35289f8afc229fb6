package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/receiptsplit/internal/settlement"
)

// Format selects how a result is written
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned for an unsupported output format
var ErrUnknownFormat = errors.New("unknown output format")

// Disclaimer closes every human-readable report
const Disclaimer = "*disclaimer*: rounding errors may result in numbers off by a cent or two"

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q (expected text, markdown or json)", ErrUnknownFormat, s)
	}
}

// Options tunes the writers
type Options struct {
	Style string // glamour style for markdown: auto, dark, light, notty, ascii...
	Width int    // word wrap for markdown; 0 keeps the default
}

// Write renders result in the given format
func Write(w io.Writer, result *settlement.Result, format Format, opts Options) error {
	switch format {
	case FormatText:
		return WriteText(w, result)
	case FormatMarkdown:
		return WriteMarkdown(w, result, opts)
	case FormatJSON:
		return WriteJSON(w, result)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteJSON writes the result DTO as indented JSON
func WriteJSON(w io.Writer, result *settlement.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result.ToResponse())
}

// amount rounds for display only; arithmetic stays in float64
func amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func amounts(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = amount(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func rate(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}
