package dsl_test

import (
	"testing"

	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_KeepsOrder(t *testing.T) {
	c, err := dsl.New().
		Ask("fullName").Prompt("What is your full name?").
		Ask("panNumber").Prompt("What is your PAN number?").
		Ask("bankName").Prompt("Which bank?").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"fullName", "panNumber", "bankName"}, c.Names())
	f, err := c.FieldAt(1)
	require.NoError(t, err)
	assert.Equal(t, "What is your PAN number?", f.Prompt)
}

func TestBuilder_AskExistingUpdatesInPlace(t *testing.T) {
	b := dsl.New()
	b.Ask("a").Prompt("first")
	b.Ask("b").Prompt("second")
	b.Ask("a").Prompt("first, reworded")

	assert.Equal(t, 2, b.Len())
	c := b.MustBuild()
	assert.Equal(t, []string{"a", "b"}, c.Names())
	f, _ := c.FieldAt(0)
	assert.Equal(t, "first, reworded", f.Prompt)
}

func TestBuilder_Invalid(t *testing.T) {
	_, err := dsl.New().Build()
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)

	_, err = dsl.New().Ask("").Prompt("nameless").Build()
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)

	assert.Panics(t, func() { dsl.New().MustBuild() })
}
