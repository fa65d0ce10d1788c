package helpers

import (
	"fmt"
	"time"

	"github.com/itlightning/dateparse"
	"github.com/lucasb-eyer/go-colorful"
)

const DateLayout = "2006-01-02"
const TimeLayout = "15:04"

// NormalizeDate accepts whatever date format a client managed to type and
// returns the canonical YYYY-MM-DD form.
func NormalizeDate(input string) (string, error) {
	parsed, err := dateparse.ParseAny(input)
	if err != nil {
		return "", fmt.Errorf("unrecognized date %q: %w", input, err)
	}
	return parsed.Format(DateLayout), nil
}

// NormalizeDateTime parses a loose timestamp into RFC3339.
func NormalizeDateTime(input string) (string, error) {
	parsed, err := dateparse.ParseAny(input)
	if err != nil {
		return "", fmt.Errorf("unrecognized timestamp %q: %w", input, err)
	}
	return parsed.UTC().Format(time.RFC3339), nil
}

// DateRangesOverlap is the inclusive interval test used for availability
// checks: two date ranges conflict when each starts no later than the other
// ends. Dates are YYYY-MM-DD strings, so lexicographic comparison is safe.
func DateRangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart <= bEnd && aEnd >= bStart
}

// TimeRangesOverlap is the strict variant used for intra-day bounds: touching
// endpoints (one booking ending 11:00, the next starting 11:00) do not
// conflict. Times are HH:MM strings.
func TimeRangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// NormalizeHexColor validates a category color and returns it in canonical
// lowercase #rrggbb form.
func NormalizeHexColor(input string) (string, error) {
	c, err := colorful.Hex(input)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", input, err)
	}
	return c.Clamped().Hex(), nil
}
