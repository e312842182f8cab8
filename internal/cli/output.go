package cli

import (
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// render writes v as JSON or YAML, or as a table with the given header and
// rows.
func render(w io.Writer, format string, v any, header table.Row, rows []table.Row) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(header)
		t.AppendRows(rows)
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q, want table, json or yaml", format)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
