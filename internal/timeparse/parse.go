package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Expression is the outcome of scanning free text for temporal vocabulary.
// Constructed per input, consumed immediately by the resolver, never stored.
type Expression struct {
	HasTime bool // explicit clock time was present in the text
	Hour    int
	Minute  int

	HasCalendarDate   bool // explicit numeric calendar date matched
	RelativeOrWeekday bool // matched a weekday name or today/tomorrow word

	Year  int
	Month time.Month
	Day   int
}

const (
	defaultHour   = 12
	defaultMinute = 0
)

var (
	// "в 18", "в 18:30" — preposition form is preferred.
	prepTimeRe = regexp.MustCompile(`(?:^|\s)в\s+(\d{1,2})(?::(\d{2}))?\b`)
	// bare "18:30"
	bareTimeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\b`)
	// "12.05", "25.12.2025"
	numericDateRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{4}))?`)
)

// weekdayStems maps lowercase Russian weekday stems (covering declensions:
// "пятница", "в пятницу", "среда", "в среду") to weekdays. Ordered slice so
// matching is deterministic.
var weekdayStems = []struct {
	stem string
	day  time.Weekday
}{
	{"понедельник", time.Monday},
	{"вторник", time.Tuesday},
	{"сред", time.Wednesday},
	{"четверг", time.Thursday},
	{"пятниц", time.Friday},
	{"суббот", time.Saturday},
	{"воскресен", time.Sunday},
}

// relativeWords maps relative day vocabulary to a civil-day delta.
// "послезавтра" must be probed before "завтра" (substring).
var relativeWords = []struct {
	word string
	days int
}{
	{"послезавтра", 2},
	{"завтра", 1},
	{"сегодня", 0},
}

// fallbackLayouts are tried, in order, when no vocabulary rule matches.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04",
}

// Parser scans text for Russian temporal vocabulary relative to an injected
// "now". It never reads the wall clock itself.
type Parser struct {
	loc *time.Location
}

func NewParser(loc *time.Location) *Parser {
	return &Parser{loc: loc}
}

// rule is one (pattern, handler) step of the scan. Rules run in priority
// order and the first one that matches wins.
type rule func(p *Parser, text string, now time.Time) (Expression, bool)

var rules = []rule{
	(*Parser).matchWeekday,
	(*Parser).matchRelativeWord,
	(*Parser).matchNumericDate,
	(*Parser).matchGenericTimestamp,
}

// Parse extracts a best-effort (date, time) pair from text relative to now.
// The boolean is false when nothing in the text could be interpreted as a
// date; the caller must then treat the raw text as a pass-through value.
func (p *Parser) Parse(text string, now time.Time) (Expression, bool) {
	folded := strings.ToLower(strings.TrimSpace(text))
	for _, r := range rules {
		if expr, ok := r(p, folded, now); ok {
			return expr, true
		}
	}
	return Expression{}, false
}

// matchWeekday resolves a named weekday to its next occurrence strictly
// after now: the candidate includes today, and if the candidate instant
// (with resolved time-of-day) is not after now, seven days are added.
func (p *Parser) matchWeekday(text string, now time.Time) (Expression, bool) {
	var target time.Weekday
	found := false
	for _, w := range weekdayStems {
		if strings.Contains(text, w.stem) {
			target = w.day
			found = true
			break
		}
	}
	if !found {
		return Expression{}, false
	}

	hour, minute, hasTime := extractClockTime(text)

	cur := now.In(p.loc).Weekday()
	delta := (int(target) - int(cur) + 7) % 7

	expr := p.civilDayOffset(now, delta, hour, minute, hasTime)
	expr.RelativeOrWeekday = true

	// The "already passed today" check compares instants after a full zone
	// round trip of now, not civil fields; the two can disagree near zone
	// transitions and the round-trip form is the contract.
	nowRef := Unproject(Project(now, p.loc), p.loc)
	candidate := Unproject(CivilTime{
		Year: expr.Year, Month: expr.Month, Day: expr.Day,
		Hour: expr.Hour, Minute: expr.Minute,
	}, p.loc)
	if !candidate.After(nowRef) {
		expr = p.civilDayOffset(now, delta+7, hour, minute, hasTime)
		expr.RelativeOrWeekday = true
	}
	return expr, true
}

// matchRelativeWord handles сегодня/завтра/послезавтра. Unlike weekdays the
// result is never rolled forward, so "сегодня" can resolve to a moment that
// has already passed.
func (p *Parser) matchRelativeWord(text string, now time.Time) (Expression, bool) {
	for _, w := range relativeWords {
		if !strings.Contains(text, w.word) {
			continue
		}
		hour, minute, hasTime := extractClockTime(text)
		expr := p.civilDayOffset(now, w.days, hour, minute, hasTime)
		expr.RelativeOrWeekday = true
		return expr, true
	}
	return Expression{}, false
}

// matchNumericDate handles D.M and D.M.YYYY. The clock time is scanned in
// the remainder of the string with the date substring removed, so that the
// month digits are never mistaken for an hour.
func (p *Parser) matchNumericDate(text string, now time.Time) (Expression, bool) {
	m := numericDateRe.FindStringSubmatchIndex(text)
	if m == nil {
		return Expression{}, false
	}
	day, _ := strconv.Atoi(text[m[2]:m[3]])
	month, _ := strconv.Atoi(text[m[4]:m[5]])
	year := now.In(p.loc).Year()
	if m[6] >= 0 {
		year, _ = strconv.Atoi(text[m[6]:m[7]])
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Expression{}, false
	}

	remainder := text[:m[0]] + text[m[1]:]
	hour, minute, hasTime := extractClockTime(remainder)
	if !hasTime {
		hour, minute = defaultHour, defaultMinute
	}
	return Expression{
		HasTime:         hasTime,
		Hour:            hour,
		Minute:          minute,
		HasCalendarDate: true,
		Year:            year,
		Month:           time.Month(month),
		Day:             day,
	}, true
}

// matchGenericTimestamp is the last resort: the raw text parsed as a whole
// against a set of common layouts, interpreted in the target zone.
func (p *Parser) matchGenericTimestamp(text string, now time.Time) (Expression, bool) {
	for _, layout := range fallbackLayouts {
		t, err := time.ParseInLocation(layout, text, p.loc)
		if err != nil {
			continue
		}
		c := Project(t, p.loc)
		return Expression{
			HasTime:         true,
			Hour:            c.Hour,
			Minute:          c.Minute,
			HasCalendarDate: true,
			Year:            c.Year,
			Month:           c.Month,
			Day:             c.Day,
		}, true
	}
	return Expression{}, false
}

// civilDayOffset computes now + days civil days with the target time-of-day
// applied. Day addition goes through absolute time (days x 86400s) and is
// reprojected into civil fields, so a DST change inside the window shifts
// the date correctly; only the date comes from the reprojection, the
// starting hour/minute are preserved and then overwritten by the target.
func (p *Parser) civilDayOffset(now time.Time, days, hour, minute int, hasTime bool) Expression {
	shifted := Project(now.Add(time.Duration(days)*24*time.Hour), p.loc)
	if !hasTime {
		hour, minute = defaultHour, defaultMinute
	}
	return Expression{
		HasTime: hasTime,
		Hour:    hour,
		Minute:  minute,
		Year:    shifted.Year,
		Month:   shifted.Month,
		Day:     shifted.Day,
	}
}

// extractClockTime pulls an explicit clock time out of text: the
// preposition form "в H[:MM]" wins over a bare "H:MM". Hour is clamped to
// [0,23] and minute to [0,59]. ok is false when neither pattern is present
// so the caller applies its default.
func extractClockTime(text string) (hour, minute int, ok bool) {
	if m := prepTimeRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		return clampHour(hour), clampMinute(minute), true
	}
	if m := bareTimeRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return clampHour(hour), clampMinute(minute), true
	}
	return 0, 0, false
}

func clampHour(h int) int {
	if h < 0 {
		return 0
	}
	if h > 23 {
		return 23
	}
	return h
}

func clampMinute(m int) int {
	if m < 0 {
		return 0
	}
	if m > 59 {
		return 59
	}
	return m
}
