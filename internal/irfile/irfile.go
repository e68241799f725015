// Package irfile reads and writes the intermediate record file produced
// by extraction and consumed by locale synchronization. TOML is the
// primary encoding; YAML files from the older tooling are still read and
// can be written on request.
package irfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"npc-localizer/internal/parser"
)

// ErrMalformedIR marks an IR file that violates the required schema.
// Unknown fields are tolerated; a record missing its id or key is not.
var ErrMalformedIR = errors.New("malformed IR file")

// Format selects the serialization encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// File is the on-disk IR shape: a module name plus its records in
// extraction order. Record order is semantically meaningful and preserved.
type File struct {
	Module  string          `toml:"module" yaml:"module"`
	Records []parser.Record `toml:"records" yaml:"records"`
}

// Write serializes the IR deterministically: stable field order, record
// order equal to input order.
func Write(w io.Writer, module string, records []parser.Record, format Format) error {
	file := File{Module: module, Records: records}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&file); err != nil {
			return fmt.Errorf("encode IR yaml: %w", err)
		}
		return enc.Close()
	default:
		if err := toml.NewEncoder(w).Encode(&file); err != nil {
			return fmt.Errorf("encode IR toml: %w", err)
		}
		return nil
	}
}

// WriteFile serializes the IR to path.
func WriteFile(path, module string, records []parser.Record, format Format) error {
	var buf bytes.Buffer
	if err := Write(&buf, module, records, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write IR file: %w", err)
	}
	return nil
}

// Read deserializes an IR file, trying TOML first and falling back to
// YAML for files produced by the older tooling. Returns the module name,
// records in file order, and warnings (legacy format notice).
func Read(path string) (string, []parser.Record, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("read IR file: %w", err)
	}

	var warnings []string

	var file File
	if _, err := toml.Decode(string(data), &file); err != nil {
		file = File{}
		if yamlErr := yaml.Unmarshal(data, &file); yamlErr != nil {
			return "", nil, nil, fmt.Errorf("%w: %s: not valid TOML or YAML", ErrMalformedIR, path)
		}
		warnings = append(warnings, "YAML IR support is being phased out, use TOML instead")
	}

	for i, rec := range file.Records {
		if rec.ID <= 0 {
			return "", nil, nil, fmt.Errorf("%w: %s: record %d has no valid id", ErrMalformedIR, path, i)
		}
		if rec.Key == "" {
			return "", nil, nil, fmt.Errorf("%w: %s: record %d has no key", ErrMalformedIR, path, i)
		}
	}

	return file.Module, file.Records, warnings, nil
}
