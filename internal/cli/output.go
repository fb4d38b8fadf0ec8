package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable renders a table.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON prints the raw JSON result.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML converts the JSON result to YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{OutputFormatTable, OutputFormatJSON, OutputFormatYAML}

// ValidateOutputFormat returns an error listing the valid formats if format is unknown.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, json, yaml)", format)
	}
}

// Render writes v to w in the given format. Values are round-tripped through
// JSON first so tables and YAML see the same field names as the wire format.
func Render(w io.Writer, format OutputFormat, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return RenderJSON(w, format, string(data))
}

// RenderJSON writes a JSON document to w in the given format.
func RenderJSON(w io.Writer, format OutputFormat, jsonData string) error {
	switch format {
	case OutputFormatJSON:
		_, err := fmt.Fprintln(w, jsonData)
		return err
	case OutputFormatYAML:
		return outputYAML(w, jsonData)
	case OutputFormatTable, "":
		var data any
		if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
			// Not JSON, print as is.
			_, err := fmt.Fprintln(w, jsonData)
			return err
		}
		return NewTableFormatter(w).FormatData(data)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputYAML(w io.Writer, jsonData string) error {
	var data any
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	_, err = w.Write(yamlData)
	return err
}
