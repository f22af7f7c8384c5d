package finder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type dateKind int

const (
	dateToday dateKind = iota
	dateYesterday
	dateDaysAgo
	dateHoursAgo
	dateMonthsAgo
	dateAbsolute
)

// dateSpec is a parsed date literal. Relative forms resolve against "now"
// only when the operation is compiled or evaluated.
type dateSpec struct {
	kind dateKind
	n    int
	abs  time.Time
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(s string) (dateSpec, error) {
	switch strings.ToLower(s) {
	case "today":
		return dateSpec{kind: dateToday}, nil
	case "yesterday":
		return dateSpec{kind: dateYesterday}, nil
	}

	if len(s) > 2 && s[0] == '-' {
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err == nil && n >= 0 {
			switch s[len(s)-1] {
			case 'd', 'D':
				return dateSpec{kind: dateDaysAgo, n: n}, nil
			case 'h', 'H':
				return dateSpec{kind: dateHoursAgo, n: n}, nil
			case 'm', 'M':
				return dateSpec{kind: dateMonthsAgo, n: n}, nil
			}
		}
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateSpec{kind: dateAbsolute, abs: t.UTC()}, nil
		}
	}

	return dateSpec{}, fmt.Errorf("invalid date %q (use today, yesterday, -Nd, -Nh, -Nm, or ISO date)", s)
}

// resolve returns the instant the literal denotes at now, in UTC.
func (d dateSpec) resolve(now time.Time) time.Time {
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch d.kind {
	case dateToday:
		return startOfDay
	case dateYesterday:
		return startOfDay.AddDate(0, 0, -1)
	case dateDaysAgo:
		return startOfDay.AddDate(0, 0, -d.n)
	case dateHoursAgo:
		return now.Add(-time.Duration(d.n) * time.Hour)
	case dateMonthsAgo:
		return startOfDay.AddDate(0, -d.n, 0)
	default:
		return d.abs
	}
}

// sql returns a SQLite expression yielding unix seconds for the literal.
// Absolute dates bind a parameter, relative ones are computed by SQLite.
func (d dateSpec) sql() (string, []any) {
	switch d.kind {
	case dateToday:
		return "unixepoch('now', 'start of day')", nil
	case dateYesterday:
		return "unixepoch('now', 'start of day', '-1 day')", nil
	case dateDaysAgo:
		return fmt.Sprintf("unixepoch('now', 'start of day', '-%d days')", d.n), nil
	case dateHoursAgo:
		return fmt.Sprintf("unixepoch('now', '-%d hours')", d.n), nil
	case dateMonthsAgo:
		return fmt.Sprintf("unixepoch('now', 'start of day', '-%d months')", d.n), nil
	default:
		return "?", []any{d.abs.Unix()}
	}
}
