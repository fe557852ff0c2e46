package timeparse

import (
	"fmt"
	"regexp"
	"time"
)

// Late at night "завтра" is genuinely ambiguous: a user typing at 00:30
// may mean the day that has just started. Relative and weekday phrases in
// the 22:00-03:59 local window therefore require an explicit confirmation
// before any booking state changes.

const (
	lateNightStartHour = 22
	lateNightEndHour   = 3
)

var explicitDateRes = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{1,2}\.\d{1,2}(\.\d{4})?`),
}

// RequiresClarification reports whether the booking action must stop and
// ask the user to confirm an exact calendar date. True iff the local hour
// at now is inside the late-night window, the text matched a relative or
// weekday rule, and no explicit calendar date appears anywhere in the raw
// text. The caller must not mutate stored state when this returns true.
func (r *Resolver) RequiresClarification(text string, now time.Time) bool {
	hour := now.In(r.loc).Hour()
	if hour < lateNightStartHour && hour > lateNightEndHour {
		return false
	}
	expr, ok := r.parser.Parse(text, now)
	if !ok || !expr.RelativeOrWeekday {
		return false
	}
	for _, re := range explicitDateRes {
		if re.MatchString(text) {
			return false
		}
	}
	return true
}

// ClarificationPrompt builds the fixed-format confirmation question that
// presents the candidate date back to the user as DD.MM.YYYY.
func (r *Resolver) ClarificationPrompt(text string, now time.Time) string {
	res := r.Resolve(text, now)
	return fmt.Sprintf(
		"Хочу убедиться, что правильно понял дату: вы имеете в виду %s? Пожалуйста, ответьте полной датой в формате ДД.ММ.ГГГГ.",
		res.DisplayDate(),
	)
}
