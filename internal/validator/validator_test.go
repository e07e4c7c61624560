package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/regality/formchat/pkg/catalog"
	"github.com/regality/formchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	issues := Validate([]byte(`
fields:
  - name: fullName
    prompt: What is your full name?
  - field: panNumber
    question: What is your PAN number?
`), catalog.FormatYAML)
	assert.Empty(t, issues)
}

func TestValidate_ReportsEverything(t *testing.T) {
	issues := Validate([]byte(`{
		"fields": [
			{"name": "fullName", "prompt": "Name?"},
			{"name": "", "prompt": "Nameless?"},
			{"name": "fullName", "prompt": "Again?"},
			{"name": "bank", "prompt": ""}
		]
	}`), catalog.FormatJSON)

	require.Len(t, issues, 3)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, 1, issues[0].Index)
	assert.Contains(t, issues[1].String(), "duplicate of field 0")
	assert.Equal(t, SeverityWarning, issues[2].Severity)
	assert.True(t, HasErrors(issues))
}

func TestValidate_DocumentErrors(t *testing.T) {
	issues := Validate([]byte("fields: []"), catalog.FormatYAML)
	require.Len(t, issues, 1)
	assert.Equal(t, -1, issues[0].Index)

	issues = Validate([]byte("fields:\n  - name: a\n    colour: blue\n"), catalog.FormatYAML)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "colour")
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check([]byte("fields:\n  - name: a\n    prompt: \"\"\n"), catalog.FormatYAML))

	err := Check([]byte("fields:\n  - name: a\n  - name: a\n"), catalog.FormatYAML)
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fields":[{"name":"a","prompt":"A?"}]}`), 0o644))

	issues, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Empty(t, issues)

	_, err = ValidateFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
