package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var (
	ordinalSuffix = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)\b`)
	numericDate   = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})(?:[-/.](\d{2,4}))?$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// NormalizeDueDate converts a natural-language due date to YYYY-MM-DD.
//
// Accepted forms, relative to today: "today", "tomorrow", "7 october [2025]",
// "october 7th [2025]", "07-10[-25|-2025]" (day first, with '-', '/' or '.'),
// and ISO dates. Commas and ordinal suffixes are ignored, and a missing year
// means today's year. Anything else is returned unchanged. Blank input
// returns nil.
func NormalizeDueDate(raw string, today time.Time) *string {
	d := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), ",", "")
	if d == "" {
		return nil
	}

	switch d {
	case "today":
		return isoPtr(today)
	case "tomorrow":
		return isoPtr(today.AddDate(0, 0, 1))
	}

	d = ordinalSuffix.ReplaceAllString(d, "$1")

	if parts := strings.Fields(d); len(parts) == 2 || len(parts) == 3 {
		year := today.Year()
		if len(parts) == 3 {
			if y, ok := parseYear(parts[2]); ok {
				year = y
			}
		}
		if day, err := strconv.Atoi(parts[0]); err == nil {
			if month, ok := monthNames[parts[1]]; ok {
				if s := calendarDate(year, month, day); s != nil {
					return s
				}
			}
		}
		if month, ok := monthNames[parts[0]]; ok {
			if day, err := strconv.Atoi(parts[1]); err == nil {
				if s := calendarDate(year, month, day); s != nil {
					return s
				}
			}
		}
	}

	if m := numericDate.FindStringSubmatch(d); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = parseYear(m[3])
		}
		if s := calendarDate(year, time.Month(month), day); s != nil {
			return s
		}
	}

	if t, err := time.Parse("2006-1-2", d); err == nil {
		return isoPtr(t)
	}

	return &raw
}

// parseYear reads a numeric year; two-digit years are taken as 20xx.
func parseYear(s string) (int, bool) {
	y, err := strconv.Atoi(s)
	if err != nil || y < 0 {
		return 0, false
	}
	if y < 100 {
		y += 2000
	}
	return y, true
}

// calendarDate returns the ISO date, or nil when the day does not exist.
func calendarDate(year int, month time.Month, day int) *string {
	if month < time.January || month > time.December || day < 1 {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return nil
	}
	return isoPtr(t)
}

func isoPtr(t time.Time) *string {
	s := t.Format(isoDate)
	return &s
}
