package dsl

import "github.com/regality/formchat/pkg/domain"

// FieldBuilder provides a fluent API for configuring a field.
type FieldBuilder struct {
	field   domain.FieldDefinition
	builder *Builder
}

// Prompt sets the question shown when the field is asked.
func (f *FieldBuilder) Prompt(text string) *FieldBuilder {
	f.field.Prompt = text
	return f
}

// Ask appends the next field. Shortcut for chaining.
func (f *FieldBuilder) Ask(name string) *FieldBuilder {
	return f.builder.Ask(name)
}

// Build builds the whole catalog. Shortcut for chaining.
func (f *FieldBuilder) Build() (*domain.Catalog, error) {
	return f.builder.Build()
}

// Definition returns the field as configured so far.
func (f *FieldBuilder) Definition() domain.FieldDefinition {
	return f.field
}
