// Package render writes formula results as JSON, YAML or plain text.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Write renders v to w in format (json, yaml or text). Text prints scalars and
// string lists one value per line and falls back to YAML for records.
func Write(w io.Writer, format string, v any) error {
	switch format {
	case "json", "":
		return writeJSON(w, v)
	case "yaml":
		return writeYAML(w, v)
	case "text":
		return writeText(w, v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush yaml: %w", err)
	}
	return nil
}

func writeText(w io.Writer, v any) error {
	var out string
	switch val := v.(type) {
	case string:
		out = val + "\n"
	case int, int64, uint64, bool:
		out = fmt.Sprintf("%v\n", val)
	case []string:
		if len(val) == 0 {
			return nil
		}
		out = strings.Join(val, "\n") + "\n"
	default:
		return writeYAML(w, v)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}
