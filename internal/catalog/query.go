package catalog

import (
	"strconv"
	"strings"
)

// Limit bounds and per-operation defaults. Every limit is clamped into
// [MinLimit, MaxLimit]; unparseable input uses the operation default.
const (
	MinLimit = 1
	MaxLimit = 100

	DefaultSearchLimit = 50
	DefaultListLimit   = 10
)

// TimeRange is the trending window token accepted by the catalog.
type TimeRange string

const (
	TimeRangeDay     TimeRange = "day"
	TimeRangeWeek    TimeRange = "week"
	TimeRangeMonth   TimeRange = "month"
	TimeRangeAllTime TimeRange = "allTime"
)

// NormalizeTimeRange coerces arbitrary input to a valid trending window,
// defaulting to week.
func NormalizeTimeRange(raw string) TimeRange {
	switch TimeRange(raw) {
	case TimeRangeDay, TimeRangeWeek, TimeRangeMonth, TimeRangeAllTime:
		return TimeRange(raw)
	default:
		return TimeRangeWeek
	}
}

// genreTokens are the queries that trigger trending fallback and
// supplementation in Search. Matching is case-insensitive and exact.
var genreTokens = map[string]struct{}{
	"pop":        {},
	"hip-hop":    {},
	"rock":       {},
	"electronic": {},
	"r&b":        {},
	"country":    {},
	"jazz":       {},
	"classical":  {},
}

// IsGenreToken reports whether the query text is one of the recognized
// genre names.
func IsGenreToken(query string) bool {
	_, ok := genreTokens[strings.ToLower(query)]
	return ok
}

// ParseLimit parses a raw limit value with parse-then-default semantics:
// unparseable or non-positive input yields def, and the result is clamped
// into [MinLimit, MaxLimit].
func ParseLimit(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == 0 {
		n = def
	}
	return clampLimit(n, def)
}

// ParseOffset parses a raw offset value, defaulting to 0 and clamping to ≥0.
func ParseOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 0
	}
	return clampOffset(n)
}

func clampLimit(n, def int) int {
	if n == 0 {
		n = def
	}
	if n < MinLimit {
		n = MinLimit
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n
}

func clampOffset(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
