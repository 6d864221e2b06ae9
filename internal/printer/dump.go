package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"
)

// Formats accepted by Dump.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatTOML  = "toml"
	FormatJSON  = "json"
)

// Dump writes snap to w in format.
func Dump(w io.Writer, format string, snap Snapshot) error {
	switch format {
	case FormatTable, "":
		return dumpTable(w, snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(snap); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown dump format %q", format)
	}
}

func dumpTable(w io.Writer, snap Snapshot) error {
	bold := color.New(color.Bold)
	shown := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("LEVEL"), bold.Sprint("ITEM"), bold.Sprint("CURRENT"), bold.Sprint("VISIBLE"), bold.Sprint("CHILD"))
	for _, level := range snap.Levels {
		name := strings.Repeat("  ", level.Depth) + level.Name
		if !level.Visible {
			name = faint.Sprint(name)
		}
		if len(level.Items) == 0 {
			tbl.AddRow(name, faint.Sprint("("+level.State+")"), "", "", "")
			continue
		}
		for i, item := range level.Items {
			label := ""
			if i == 0 {
				label = name
			}
			current := ""
			if item.Name == level.Current {
				current = "*"
			}
			visible := faint.Sprint("no")
			if item.Visible {
				visible = shown.Sprint("yes")
			}
			tbl.AddRow(label, item.Name, current, visible, item.Child)
		}
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}
