package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"downlevel/internal/helpers"
)

var helpersCmd = &cobra.Command{
	Use:   "helpers [names...]",
	Short: "List the runtime helper catalog in emission order",
	Long: `Helpers lists every runtime helper the lowering passes can request, in the
order a prologue emits them. Names may be catalog names (downlevel:read) or
import names (__read); --text prints the helper sources.`,
	RunE: runHelpers,
}

func init() {
	helpersCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	helpersCmd.Flags().Bool("text", false, "include helper source text")
}

type helperPayload struct {
	Name       string   `json:"name"`
	ImportName string   `json:"import_name,omitempty"`
	Scope      string   `json:"scope"`
	Priority   *int     `json:"priority,omitempty"`
	Deps       []string `json:"deps,omitempty"`
	Text       string   `json:"text,omitempty"`
}

func runHelpers(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	withText, err := cmd.Flags().GetBool("text")
	if err != nil {
		return err
	}
	ids, err := selectHelpers(args)
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "json":
		return renderHelpersJSON(cmd.OutOrStdout(), ids, withText)
	case "pretty":
		return renderHelpersPretty(cmd.OutOrStdout(), ids, withText)
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

// selectHelpers resolves names, or the whole catalog when there are none,
// and sorts the result in emission order.
func selectHelpers(names []string) ([]helpers.ID, error) {
	var ids []helpers.ID
	if len(names) == 0 {
		ids = helpers.All()
	} else {
		set := helpers.NewSet()
		for _, name := range names {
			id, ok := helpers.ByName(name)
			if !ok {
				return nil, fmt.Errorf("unknown helper %q", name)
			}
			set.Add(id)
		}
		ids = set.IDs()
	}
	helpers.Sort(ids)
	return ids, nil
}

func helperRow(d *helpers.Descriptor) helperPayload {
	p := helperPayload{Name: d.Name, ImportName: d.ImportName, Scope: d.Scope.String()}
	if d.HasPriority() {
		prio := d.Priority
		p.Priority = &prio
	}
	for _, dep := range d.Deps {
		p.Deps = append(p.Deps, helpers.MustLookup(dep).Name)
	}
	return p
}

func renderHelpersJSON(out io.Writer, ids []helpers.ID, withText bool) error {
	payload := make([]helperPayload, 0, len(ids))
	for _, id := range ids {
		d := helpers.MustLookup(id)
		row := helperRow(d)
		if withText {
			row.Text = d.Text
		}
		payload = append(payload, row)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func renderHelpersPretty(out io.Writer, ids []helpers.ID, withText bool) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "IMPORT", "SCOPE", "PRIORITY", "DEPS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		})
	for _, id := range ids {
		p := helperRow(helpers.MustLookup(id))
		prio := "-"
		if p.Priority != nil {
			prio = strconv.Itoa(*p.Priority)
		}
		t.Row(p.Name, valueOr(p.ImportName, "-"), p.Scope, prio, valueOr(strings.Join(p.Deps, ", "), "-"))
	}
	if _, err := fmt.Fprintln(out, t.Render()); err != nil {
		return err
	}
	if !withText {
		return nil
	}
	for _, id := range ids {
		d := helpers.MustLookup(id)
		if _, err := fmt.Fprintf(out, "\n// %s\n%s\n", d.Name, d.Text); err != nil {
			return err
		}
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
