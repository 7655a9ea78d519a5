package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an input document encoding.
type Format uint8

const (
	// FormatJSON decodes with unknown fields rejected.
	FormatJSON Format = iota
	// FormatYAML decodes with KnownFields set, so unknown keys fail too.
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ParseFormat maps "json", "yaml" or "yml" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("diagram: unknown format %q", s)
}

// FormatForPath picks the format from a file extension, defaulting to
// JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode reads one document. Unknown fields anywhere in the document are
// rejected with a *SchemaError.
func Decode(r io.Reader, format Format) (*Input, error) {
	var in Input
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&in); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, schemaErr("document", "is empty")
			}
			return nil, &SchemaError{Field: "document", Reason: "cannot be decoded", Err: err}
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, schemaErr("document", "is empty")
			}
			return nil, &SchemaError{Field: "document", Reason: "cannot be decoded", Err: err}
		}
		if dec.More() {
			return nil, schemaErr("document", "has trailing data")
		}
	}
	return &in, nil
}
