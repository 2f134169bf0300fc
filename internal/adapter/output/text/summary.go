package text

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmaloney/deepscan/internal/domain"
)

var titleCaser = cases.Title(language.English)

// FormatSummary renders the one-line batch summary for a verdict, e.g.
// "⚠ clip.mp4: Likely Fake (61% confidence)".
func FormatSummary(filename string, verdict domain.Verdict) string {
	label := titleCaser.String(strings.ToLower(verdict.Classification.String()))
	return fmt.Sprintf("%s %s: %s (%d%% confidence)",
		verdict.Classification.Glyph(), filename, label, verdict.Confidence)
}
