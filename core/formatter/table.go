package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats output as aligned text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// FormatList formats the rows as a table.
func (f *TableFormatter) FormatList(w io.Writer, ds Dataset, opts FormatOptions) error {
	if len(ds.Rows) == 0 {
		fmt.Fprintf(w, "No %ss found.\n", kindOr(ds.Kind, "record"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := columns(ds, opts.Columns)

	if !opts.NoHeader {
		headers := make([]string, len(cols))
		for i, c := range cols {
			headers[i] = strings.ToUpper(c)
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}

	for _, row := range ds.Rows {
		values := make([]string, len(cols))
		for i, c := range cols {
			values[i] = formatValue(row[c], opts.MaxWidth)
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}

	return tw.Flush()
}

// FormatRecord formats a single row as label: value lines.
func (f *TableFormatter) FormatRecord(w io.Writer, ds Dataset, record map[string]any, opts FormatOptions) error {
	if record == nil {
		fmt.Fprintf(w, "%s not found.\n", formatLabel(kindOr(ds.Kind, "record")))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range columns(ds, opts.Columns) {
		fmt.Fprintf(tw, "%s:\t%s\n", formatLabel(c), formatValue(record[c], 0))
	}
	return tw.Flush()
}

// FormatError formats an error message.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "Error: %s\n", err.Error())
	return werr
}

func kindOr(kind, fallback string) string {
	if kind == "" {
		return fallback
	}
	return kind
}

// formatLabel converts snake_case to Title Case.
func formatLabel(name string) string {
	words := strings.Split(name, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatValue(val any, maxWidth int) string {
	if val == nil {
		return "-"
	}

	var str string
	switch v := val.(type) {
	case string:
		str = v
		if str == "" {
			str = "-"
		}
	case bool:
		if v {
			str = "yes"
		} else {
			str = "no"
		}
	case int:
		str = strconv.Itoa(v)
	case float64:
		if v == float64(int64(v)) {
			str = strconv.FormatInt(int64(v), 10)
		} else {
			str = strconv.FormatFloat(v, 'f', 2, 64)
		}
	default:
		b, _ := json.Marshal(v)
		str = string(b)
	}

	if maxWidth > 3 && len(str) > maxWidth {
		str = str[:maxWidth-3] + "..."
	}
	return str
}

func init() {
	if err := Register(NewTableFormatter()); err != nil {
		fmt.Printf("failed to register table formatter: %v\n", err)
	}
}
