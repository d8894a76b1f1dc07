package views

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"retailadmin/models"
	"retailadmin/resources"
	"retailadmin/utils"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// RenderList writes a list snapshot as an aligned table with a paging footer.
func RenderList(w io.Writer, s ListSnapshot) error {
	fmt.Fprintf(w, "%s", s.Schema.Title)
	if s.Filter.Search != "" {
		fmt.Fprintf(w, " (search: %q)", s.Filter.Search)
	}
	fmt.Fprintln(w)
	if s.State == Loading {
		fmt.Fprintln(w, "loading...")
	}
	if s.Error != "" {
		fmt.Fprintf(w, "error: %s\n", s.Error)
	}

	tw := newTable(w)
	titles := make([]string, len(s.Schema.Columns))
	for i, c := range s.Schema.Columns {
		titles[i] = c.Title
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for _, rec := range s.Items {
		cells := make([]string, len(s.Schema.Columns))
		for i, c := range s.Schema.Columns {
			cells[i] = cell(rec, c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	start, end := utils.PageBounds(s.TotalCount, s.Filter.Page, s.Filter.Limit)
	if end > start {
		start++
	}
	_, err := fmt.Fprintf(w, "%d-%d of %d  page %d/%d\n", start, end, s.TotalCount, s.Filter.Page, max(s.Pages(), 1))
	return err
}

// RenderRecord writes one record as field/value lines in schema order, followed by any extra fields.
func RenderRecord(w io.Writer, schema *resources.Schema, rec models.Record) error {
	tw := newTable(w)
	seen := map[string]bool{}
	if id := rec.ID(); id != "" {
		fmt.Fprintf(tw, "ID\t%s\n", id)
		seen["id"] = true
	}
	for _, f := range schema.Fields {
		seen[f.Name] = true
		if f.Kind == resources.Password {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", f.Label, rec.Text(f.Name))
	}
	var extra []string
	for k := range rec {
		if !seen[k] && k != "password" {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fmt.Fprintf(tw, "%s\t%s\n", k, rec.Text(k))
	}
	return tw.Flush()
}

// RenderForm writes the form fields with their current values and, for reference fields, the loaded options.
func RenderForm(w io.Writer, s FormSnapshot) error {
	action := "New " + s.Schema.Noun()
	if s.Mode == resources.Edit {
		action = fmt.Sprintf("Edit %s %s", s.Schema.Noun(), s.ID)
	}
	fmt.Fprintln(w, action)

	tw := newTable(w)
	for _, f := range s.Schema.FormFields(s.Mode) {
		label := f.Label
		if f.Required {
			label += " *"
		}
		value := s.Values.Text(f.Name)
		if f.Kind == resources.Password && value != "" {
			value = strings.Repeat("*", len(value))
		}
		hint := f.Kind.String()
		switch {
		case f.Kind == resources.Enum:
			hint = strings.Join(f.Options, "|")
		case f.Kind == resources.Reference && len(s.Options[f.Name]) > 0:
			labels := make([]string, 0, len(s.Options[f.Name]))
			for _, o := range s.Options[f.Name] {
				labels = append(labels, o.Value+"="+o.Label)
			}
			hint = strings.Join(labels, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t(%s)\n", f.Name, label, value, hint)
	}
	return tw.Flush()
}

// RenderDashboard writes one line per resource with its record count.
func RenderDashboard(w io.Writer, counts []ResourceCount) error {
	fmt.Fprintln(w, "Dashboard")
	tw := newTable(w)
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Schema.Title, c.Count)
	}
	return tw.Flush()
}

func cell(rec models.Record, c resources.Column) string {
	if c.Money {
		return utils.FormatMoney(rec[c.Field])
	}
	if c.Field == "status" {
		return strings.ToUpper(rec.Text(c.Field))
	}
	return rec.Text(c.Field)
}
