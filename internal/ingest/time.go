package ingest

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var errMissingTime = errors.New("missing time")

// Spreadsheet serials count days since this epoch (the 1900 system with its
// historical off-by-two).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateTokenRe = regexp.MustCompile(`(?i)\d{1,2}[/.-]\d{1,2}|\d{4}|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`)

// Layouts for time-of-day values that carry no date at all. Parsing these
// yields year zero, so they land in the re-anchor branch below.
var timeOnlyLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04:05 PM", "3:04:05PM", "15h04"}

// ParseCellTime turns a timetable time cell into a wall-clock instant in loc.
// It accepts spreadsheet date serials (fractions are time-of-day, values
// below one day are time-only), bare times in 24-hour or any-case 12-hour
// form, and free-text date-times parsed day-first. A parse that lands
// implausibly before 1970 with no date token in the source is a time-of-day
// and is re-anchored to today.
func ParseCellTime(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	txt := strings.TrimSpace(raw)
	if txt == "" {
		return time.Time{}, errMissingTime
	}

	if serial, err := strconv.ParseFloat(txt, 64); err == nil {
		return fromSerial(serial, loc, now), nil
	}

	dt, err := parseText(txt, loc)
	if err != nil {
		return time.Time{}, err
	}
	if dt.Year() < 1970 && !dateTokenRe.MatchString(txt) {
		return anchorToDay(dt, now, loc), nil
	}
	return dt.In(loc), nil
}

func parseText(txt string, loc *time.Location) (time.Time, error) {
	// AM/PM markers arrive in any case; the upper-cased variant keeps the
	// layout match strict without touching forms like 15h04.
	for _, candidate := range []string{txt, strings.ToUpper(txt)} {
		for _, layout := range timeOnlyLayouts {
			if t, err := time.ParseInLocation(layout, candidate, loc); err == nil {
				return t, nil
			}
		}
	}
	return dateparse.ParseIn(txt, loc,
		dateparse.PreferMonthFirst(false),
		dateparse.RetryAmbiguousDateWithSwap(true))
}

func fromSerial(serial float64, loc *time.Location, now time.Time) time.Time {
	days := math.Floor(serial)
	frac := time.Duration(math.Round((serial - days) * 24 * float64(time.Hour)))
	if serial < 1 {
		// Time-only cell: a fraction of today.
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return day.Add(frac)
	}
	d := serialEpoch.AddDate(0, 0, int(days))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).Add(frac)
}

func anchorToDay(t, now time.Time, loc *time.Location) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}
