package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"telltales/internal/telldus"
	tstrings "telltales/pkg/strings"
)

// EmptyResourcesMessage is printed when a listing returns nothing.
const EmptyResourcesMessage = "No resources returned for the selected filter."

var resourceHeaders = []string{"TYPE", "ID", "NAME", "DETAILS"}

// resourceRecord is the JSON/YAML shape of a listed resource.
type resourceRecord struct {
	Type    string `json:"type" yaml:"type"`
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}

// SortEntries orders entries by category, then name, then id.
func SortEntries(entries []telldus.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// RenderResources sorts entries and writes them to w in the selected format.
func RenderResources(w io.Writer, entries []telldus.Entry, opts OutputOptions) error {
	SortEntries(entries)

	switch opts.Format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records(entries))
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(entries)); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, EmptyResourcesMessage)
		return err
	}

	switch opts.Format {
	case OutputFormatPretty:
		renderPretty(w, entries, opts.NoHeaders)
	case OutputFormatTable, "":
		tw := NewPlainTableWriter(w)
		tw.SetHeaders(resourceHeaders)
		tw.SetNoHeaders(opts.NoHeaders)
		for _, e := range entries {
			tw.AppendRow([]string{string(e.Category), e.ID, e.Name, detailsOrDash(e.Details)})
		}
		tw.Render()
	default:
		return ValidateOutputFormat(string(opts.Format))
	}
	return nil
}

func renderPretty(w io.Writer, entries []telldus.Entry, noHeaders bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	if !noHeaders {
		header := make(table.Row, len(resourceHeaders))
		for i, h := range resourceHeaders {
			header[i] = text.FgHiCyan.Sprint(h)
		}
		t.AppendHeader(header)
	}
	for _, e := range entries {
		t.AppendRow(table.Row{categoryColor(e.Category).Sprint(string(e.Category)), e.ID, e.Name, detailsOrDash(tstrings.SingleLine(e.Details, tstrings.DefaultColumnMaxLen))})
	}
	t.Render()
}

func categoryColor(c telldus.Category) text.Color {
	switch c {
	case telldus.CategoryController:
		return text.FgHiBlue
	case telldus.CategoryDevice:
		return text.FgGreen
	case telldus.CategorySensor:
		return text.FgYellow
	default:
		return text.FgWhite
	}
}

func records(entries []telldus.Entry) []resourceRecord {
	out := make([]resourceRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, resourceRecord{Type: string(e.Category), ID: e.ID, Name: e.Name, Details: e.Details})
	}
	return out
}

func detailsOrDash(details string) string {
	if details == "" {
		return "-"
	}
	return details
}
