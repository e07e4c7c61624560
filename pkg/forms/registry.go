package forms

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/regality/formchat/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed forms.yaml
var defaultForms []byte

// Metadata describes a regulatory form.
type Metadata struct {
	Title      string   `json:"title" mapstructure:"title"`
	Checklist  []string `json:"checklist" mapstructure:"checklist"`
	SampleLink string   `json:"sample_link" mapstructure:"sample_link"`
}

// Registry is a read-only set of form metadata keyed by code.
type Registry struct {
	forms map[string]Metadata
}

type registryFile struct {
	Forms map[string]Metadata `mapstructure:"forms"`
}

// NewRegistry builds a registry from code → metadata pairs.
func NewRegistry(forms map[string]Metadata) *Registry {
	r := &Registry{forms: make(map[string]Metadata, len(forms))}
	for code, m := range forms {
		m.Checklist = append([]string(nil), m.Checklist...)
		r.forms[strings.ToUpper(code)] = m
	}
	return r
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := Parse(defaultForms, false)
	if err != nil {
		panic(fmt.Sprintf("built-in forms are invalid: %v", err))
	}
	return r
}

// Load reads a registry file (YAML, or JSON by extension). An empty path yields Default().
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forms: %w", err)
	}
	r, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a registry document.
func Parse(data []byte, isJSON bool) (*Registry, error) {
	var raw map[string]any
	var err error
	if isJSON {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse forms: %w", err)
	}

	var file registryFile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &file,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode forms: %w", err)
	}
	return NewRegistry(file.Forms), nil
}

// Lookup returns the metadata for code, ignoring case.
func (r *Registry) Lookup(code string) (Metadata, error) {
	m, ok := r.forms[strings.ToUpper(code)]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %q", domain.ErrFormNotFound, code)
	}
	m.Checklist = append([]string(nil), m.Checklist...)
	return m, nil
}

// Codes returns the known form codes, sorted.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.forms))
	for c := range r.forms {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
