package formatter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Description returns the formatter description.
func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// FormatList formats the rows as YAML.
func (f *YAMLFormatter) FormatList(w io.Writer, ds Dataset, opts FormatOptions) error {
	cols := columns(ds, opts.Columns)
	data := make([]map[string]any, len(ds.Rows))
	for i, row := range ds.Rows {
		data[i] = project(row, cols)
	}

	return f.encode(w, map[string]any{
		"kind":  ds.Kind,
		"count": len(data),
		"data":  data,
	})
}

// FormatRecord formats a single row as YAML.
func (f *YAMLFormatter) FormatRecord(w io.Writer, ds Dataset, record map[string]any, opts FormatOptions) error {
	var data map[string]any
	if record != nil {
		data = project(record, columns(ds, opts.Columns))
	}
	return f.encode(w, map[string]any{
		"kind": ds.Kind,
		"data": data,
	})
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, map[string]any{"error": err.Error()})
}

func (f *YAMLFormatter) encode(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewYAMLFormatter()); err != nil {
		fmt.Printf("failed to register yaml formatter: %v\n", err)
	}
}
