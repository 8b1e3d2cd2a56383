package dateroll

import "strings"

// Date patterns use the token alphabet common to logging frameworks in other
// ecosystems, so a datePattern copied out of an existing app config keeps
// working. Go layout strings contain none of these letters and pass through
// untranslated.
const (
	DefaultPattern = ".yyyy-MM-dd"       // One file per day.
	PatternMonthly = ".yyyy-MM"          // One file per month.
	PatternHourly  = ".yyyy-MM-dd-hh"    // One file per hour.
	PatternMinute  = ".yyyy-MM-dd-hh-mm" // One file per minute. For tests, mostly.
)

// patternTokens maps date-format tokens to Go time layout elements. Longer
// tokens sit before their prefixes so the replacer matches them first.
var patternTokens = strings.NewReplacer( //nolint:gochecknoglobals
	"yyyy", "2006",
	"yy", "06",
	"MM", "01",
	"dd", "02",
	"hh", "15",
	"mm", "04",
	"SSS", "000",
	"ss", "05",
)

// TranslatePattern converts a date-format pattern like ".yyyy-MM-dd" into a
// Go time layout like ".2006-01-02". Unknown characters are kept as they
// are, so a pattern already written as a Go layout survives translation.
func TranslatePattern(pattern string) string {
	return patternTokens.Replace(pattern)
}
