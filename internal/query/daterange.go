package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// dateParser recognises the "since yesterday"/"3 days ago" style phrasing
// basic search's --since/--before flags accept, on top of the plain
// "7d"/"24h" durations ParseRelativeDate also understands.
var dateParser = newDateParser()

func newDateParser() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}

// ParseRelativeDate resolves a date-range endpoint (§4.I's "updated>7d"-
// style filters and free-form "since yesterday" phrasing) against ref,
// trying the "<N>h"/"<N>d"/"<N>w" shorthand first and falling back to
// olebedev/when's natural-language parser.
func ParseRelativeDate(raw string, ref time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, kgerr.New(kgerr.InvalidQuery, "empty date expression")
	}

	if d, ok := parseShorthandDuration(raw); ok {
		return ref.Add(-d), nil
	}

	result, err := dateParser.Parse(raw, ref)
	if err != nil {
		return time.Time{}, kgerr.Wrap(kgerr.InvalidQuery, err, "parse date expression %q", raw)
	}
	if result == nil {
		return time.Time{}, kgerr.New(kgerr.InvalidQuery, "unrecognised date expression %q", raw)
	}
	return result.Time, nil
}

// parseShorthandDuration recognises "<N>d"/"<N>h"/"<N>w" as N days/hours/
// weeks ago, the compact form §4.I's examples use ("updated>7d").
func parseShorthandDuration(raw string) (time.Duration, bool) {
	if len(raw) < 2 {
		return 0, false
	}
	unit := raw[len(raw)-1]
	n, err := strconv.Atoi(raw[:len(raw)-1])
	if err != nil || n < 0 {
		return 0, false
	}
	switch unit {
	case 'h':
		return time.Duration(n) * time.Hour, true
	case 'd':
		return time.Duration(n) * 24 * time.Hour, true
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}
