package forms

import (
	"fmt"
	"strings"
	"time"

	"github.com/regality/formchat/pkg/domain"
)

// TimestampLayout is the footer timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// RenderDocument renders a filled form as markdown: a title, one
// "field: value" line per answer in record order, and a generation footer.
func RenderDocument(formType string, record domain.Record, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# RBI Compliance Form - %s\n\n", formType)
	for _, a := range record {
		fmt.Fprintf(&b, "- **%s**: %s\n", a.Field, a.Value)
	}
	fmt.Fprintf(&b, "\n*Generated on %s*\n", generatedAt.Format(TimestampLayout))
	return b.String()
}
