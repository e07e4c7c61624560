package domain

import (
	"fmt"
	"strings"
)

// FieldDefinition is a single question in the catalog.
type FieldDefinition struct {
	// Name is the key the answer is stored under. Unique within a catalog.
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Prompt is the text shown to the user when the field is asked.
	Prompt string `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
}

// Catalog is the ordered list of fields a dialogue walks through.
// The order is the interrogation order. A Catalog is read-only once built.
type Catalog struct {
	fields []FieldDefinition
	index  map[string]int
}

// NewCatalog validates the definitions and returns an immutable catalog.
// It rejects empty catalogs, blank names and duplicate names.
func NewCatalog(fields ...FieldDefinition) (*Catalog, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: catalog must contain at least one field", ErrInvalidCatalog)
	}

	c := &Catalog{
		fields: make([]FieldDefinition, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("%w: field %d has no name", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", ErrInvalidCatalog, f.Name)
		}
		c.index[f.Name] = i
		c.fields[i] = f
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error. Intended for static definitions.
func MustCatalog(fields ...FieldDefinition) *Catalog {
	c, err := NewCatalog(fields...)
	if err != nil {
		panic(err)
	}
	return c
}

// Size returns the number of fields.
func (c *Catalog) Size() int {
	return len(c.fields)
}

// FieldAt returns the field at index, or ErrOutOfRange.
func (c *Catalog) FieldAt(index int) (FieldDefinition, error) {
	if index < 0 || index >= len(c.fields) {
		return FieldDefinition{}, fmt.Errorf("%w: index=%d size=%d", ErrOutOfRange, index, len(c.fields))
	}
	return c.fields[index], nil
}

// IndexOf returns the position of the named field.
func (c *Catalog) IndexOf(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Fields returns a copy of the definitions in catalog order.
func (c *Catalog) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(c.fields))
	copy(out, c.fields)
	return out
}

// Names returns the field names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return names
}
