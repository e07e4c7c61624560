// Package catalog loads field catalogs from YAML or JSON files.
//
// A catalog file lists fields in interrogation order:
//
//	fields:
//	  - name: fullName
//	    prompt: What is your full name?
//
// The keys "field" and "question" are accepted as aliases of "name" and
// "prompt". Unknown keys are rejected.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/regality/formchat/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Format selects the decoder for Parse.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

type fileSpec struct {
	Fields []fieldSpec `mapstructure:"fields"`
}

type fieldSpec struct {
	Name     string `mapstructure:"name"`
	Field    string `mapstructure:"field"`
	Prompt   string `mapstructure:"prompt"`
	Question string `mapstructure:"question"`
}

func (f fieldSpec) definition() domain.FieldDefinition {
	def := domain.FieldDefinition{Name: f.Name, Prompt: f.Prompt}
	if def.Name == "" {
		def.Name = f.Field
	}
	if def.Prompt == "" {
		def.Prompt = f.Question
	}
	return def
}

// Default returns the built-in catalog.
func Default() *domain.Catalog {
	c, err := Parse(defaultCatalog, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. The format follows the extension; anything
// other than .json is read as YAML. An empty path yields Default().
func Load(path string) (*domain.Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	c, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, format Format) (*domain.Catalog, error) {
	defs, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return domain.NewCatalog(defs...)
}

// Decode reads the field definitions of a catalog document without
// checking names for blanks or duplicates.
func Decode(data []byte, format Format) ([]domain.FieldDefinition, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, err)
		}
	}

	var spec fileSpec
	if err := decode(raw, &spec); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, err)
	}

	defs := make([]domain.FieldDefinition, len(spec.Fields))
	for i, f := range spec.Fields {
		if f.Name != "" && f.Field != "" && f.Name != f.Field {
			return nil, fmt.Errorf("%w: field %d sets both name %q and field %q", domain.ErrInvalidCatalog, i, f.Name, f.Field)
		}
		defs[i] = f.definition()
	}
	return defs, nil
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
