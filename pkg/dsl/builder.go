package dsl

import (
	"fmt"

	"github.com/regality/formchat/pkg/domain"
)

// Builder collects fields in the order they are added.
type Builder struct {
	fields []*FieldBuilder
	index  map[string]*FieldBuilder
}

// New creates a new catalog builder.
func New() *Builder {
	return &Builder{
		index: make(map[string]*FieldBuilder),
	}
}

// Ask appends a field to the catalog.
// If the field already exists, it returns the existing builder and keeps its position.
func (b *Builder) Ask(name string) *FieldBuilder {
	if fb, ok := b.index[name]; ok {
		return fb
	}
	fb := &FieldBuilder{
		field:   domain.FieldDefinition{Name: name},
		builder: b,
	}
	b.fields = append(b.fields, fb)
	b.index[name] = fb
	return fb
}

// Len returns the number of fields added so far.
func (b *Builder) Len() int {
	return len(b.fields)
}

// Build validates the fields and returns an immutable catalog.
func (b *Builder) Build() (*domain.Catalog, error) {
	defs := make([]domain.FieldDefinition, len(b.fields))
	for i, fb := range b.fields {
		defs[i] = fb.field
	}

	c, err := domain.NewCatalog(defs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return c, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *domain.Catalog {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
