package formatter

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatList formats the rows as {"kind","count","data"}.
func (f *JSONFormatter) FormatList(w io.Writer, ds Dataset, opts FormatOptions) error {
	cols := columns(ds, opts.Columns)
	data := make([]map[string]any, len(ds.Rows))
	for i, row := range ds.Rows {
		data[i] = project(row, cols)
	}

	return f.encode(w, map[string]any{
		"kind":  ds.Kind,
		"count": len(data),
		"data":  data,
	}, opts.Compact)
}

// FormatRecord formats a single row.
func (f *JSONFormatter) FormatRecord(w io.Writer, ds Dataset, record map[string]any, opts FormatOptions) error {
	var data map[string]any
	if record != nil {
		data = project(record, columns(ds, opts.Columns))
	}
	return f.encode(w, map[string]any{
		"kind": ds.Kind,
		"data": data,
	}, opts.Compact)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, map[string]any{"error": err.Error()}, false)
}

func (f *JSONFormatter) encode(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewJSONFormatter()); err != nil {
		fmt.Printf("failed to register json formatter: %v\n", err)
	}
}
