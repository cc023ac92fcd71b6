package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order against the trimmed input; the first full
// match wins. Day-first layouts precede month-first ones, so "03/04/2025"
// resolves to 3 April 2025.
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2006/1/2",
	"2-1-2006",
	"1-2-2006",
	"2.1.2006",
	"1.2.2006",
	"2006.1.2",
	"20060102",
	"02012006",
}

var digitRuns = regexp.MustCompile(`\d+`)

// DateResolver turns date-like strings into calendar dates. It never fails:
// input that cannot be interpreted resolves to the processing date.
//
// Known limitation: when the digit-run fallback sees two short numbers and no
// four-digit year in a leading or trailing position, it cannot tell day/month
// from month/day and reads them as month then day.
type DateResolver struct {
	now func() time.Time
}

// NewDateResolver creates a resolver using now as the processing clock.
// A nil clock means time.Now.
func NewDateResolver(now func() time.Time) *DateResolver {
	if now == nil {
		now = time.Now
	}
	return &DateResolver{now: now}
}

// Resolve parses text into a date at UTC midnight.
func (r *DateResolver) Resolve(text string) time.Time {
	d, _ := r.ResolveStrict(text)
	return d
}

// ResolveStrict is Resolve that also reports whether the input was
// understood. When ok is false the returned date is the processing date.
func (r *DateResolver) ResolveStrict(text string) (date time.Time, ok bool) {
	value := strings.TrimSpace(text)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	if t, ok := r.fromDigitRuns(value); ok {
		return t, true
	}
	return r.today(), false
}

// fromDigitRuns disambiguates the year position by run length.
func (r *DateResolver) fromDigitRuns(value string) (time.Time, bool) {
	runs := digitRuns.FindAllString(value, -1)
	if len(runs) < 3 {
		return time.Time{}, false
	}

	nums := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(runs[i])
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	switch {
	case len(runs[0]) == 4:
		return makeDate(nums[0], nums[1], nums[2])
	case len(runs[2]) == 4:
		return makeDate(nums[2], nums[1], nums[0])
	default:
		return makeDate(r.now().Year(), nums[0], nums[1])
	}
}

func (r *DateResolver) today() time.Time {
	now := r.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// makeDate builds a date without letting time.Date normalize overflowing
// fields into the next month or year.
func makeDate(year, month, day int) (time.Time, bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
