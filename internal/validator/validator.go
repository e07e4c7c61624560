package validator

import (
	"fmt"
	"os"
	"strings"

	"github.com/regality/formchat/pkg/catalog"
	"github.com/regality/formchat/pkg/domain"
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a catalog.
type Issue struct {
	Severity Severity
	// Index is the field position, or -1 for document-level problems.
	Index   int
	Field   string
	Message string
}

func (i Issue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: field %d (%q): %s", i.Severity, i.Index, i.Field, i.Message)
}

// ValidateFile reads and checks a catalog file.
func ValidateFile(path string) ([]Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Validate(data, catalog.FormatOf(path)), nil
}

// Validate checks every field of a catalog document and reports all
// problems at once, where loading stops at the first.
//
// Blank and duplicate names are errors; empty prompts are warnings since
// the field can still be answered.
func Validate(data []byte, format catalog.Format) []Issue {
	defs, err := catalog.Decode(data, format)
	if err != nil {
		return []Issue{{Severity: SeverityError, Index: -1, Message: err.Error()}}
	}
	if len(defs) == 0 {
		return []Issue{{Severity: SeverityError, Index: -1, Message: "catalog must contain at least one field"}}
	}

	var issues []Issue
	seen := make(map[string]int, len(defs))
	for i, f := range defs {
		name := strings.TrimSpace(f.Name)
		switch {
		case name == "":
			issues = append(issues, Issue{SeverityError, i, f.Name, "name is required"})
		case name != f.Name:
			issues = append(issues, Issue{SeverityWarning, i, f.Name, "name has surrounding whitespace"})
		}
		if first, dup := seen[f.Name]; dup && name != "" {
			issues = append(issues, Issue{SeverityError, i, f.Name, fmt.Sprintf("duplicate of field %d", first)})
		} else if !dup {
			seen[f.Name] = i
		}
		if strings.TrimSpace(f.Prompt) == "" {
			issues = append(issues, Issue{SeverityWarning, i, f.Name, "prompt is empty"})
		}
	}
	return issues
}

// HasErrors reports whether any issue would prevent the catalog from loading.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Check is a convenience that folds errors into a single ErrInvalidCatalog.
func Check(data []byte, format catalog.Format) error {
	issues := Validate(data, format)
	if !HasErrors(issues) {
		return nil
	}
	var lines []string
	for _, i := range issues {
		if i.Severity == SeverityError {
			lines = append(lines, i.String())
		}
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrInvalidCatalog, len(lines), strings.Join(lines, "\n- "))
}
