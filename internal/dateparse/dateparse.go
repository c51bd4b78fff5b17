// Package dateparse turns free-text date phrases in travel queries into
// calendar dates.
//
// Recognized forms are ISO dates (2025-01-10), month names (January),
// month-year pairs (August 2024) and relative phrases anchored on the
// caller's "now": tomorrow, next week, next weekend, next month, next year,
// next N days/weeks/months, next <weekday> and next N <weekday>s.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

// Kind distinguishes full dates from month-level mentions.
type Kind int

const (
	FullDate Kind = iota
	Month
	MonthYear
)

func (k Kind) String() string {
	switch k {
	case Month:
		return "Month"
	case MonthYear:
		return "Month and Year"
	default:
		return "Full Date"
	}
}

// Mention is one date expression found in a query. Text is the display value
// ("2025-01-10", "August", "August 2024"); Start and End bound the calendar
// days the phrase covers and are equal for single-day mentions.
type Mention struct {
	Kind   Kind
	Text   string
	Phrase string
	Start  time.Time
	End    time.Time
}

// Label renders the mention the way chat replies show it.
func (m Mention) Label() string {
	return fmt.Sprintf("%s (%s)", m.Text, m.Kind)
}

// Range returns the first and last day covered by the mention.
func (m Mention) Range() (time.Time, time.Time) {
	return m.Start, m.End
}

// SingleDay reports whether the mention covers exactly one day.
func (m Mention) SingleDay() bool {
	return m.Start.Equal(m.End)
}

const (
	monthNames   = "january|february|march|april|may|june|july|august|september|october|november|december"
	weekdayNames = "monday|tuesday|wednesday|thursday|friday|saturday|sunday"
)

var (
	isoDateRe      = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	monthYearRe    = regexp.MustCompile(`(?i)\b(` + monthNames + `)\s+(\d{4})\b`)
	monthRe        = regexp.MustCompile(`(?i)\b(` + monthNames + `)\b`)
	tomorrowRe     = regexp.MustCompile(`(?i)\btomorrow\b`)
	nextWeekRe     = regexp.MustCompile(`(?i)\bnext\s+week\b`)
	nextWeekendRe  = regexp.MustCompile(`(?i)\bnext\s+weekend\b`)
	nextMonthRe    = regexp.MustCompile(`(?i)\bnext\s+month\b`)
	nextYearRe     = regexp.MustCompile(`(?i)\bnext\s+year\b`)
	nextNUnitRe    = regexp.MustCompile(`(?i)\bnext\s+(\d+)\s+(day|week|month)s?\b`)
	nextWeekdayRe  = regexp.MustCompile(`(?i)\bnext\s+(` + weekdayNames + `)\b`)
	nextNWeekdayRe = regexp.MustCompile(`(?i)\bnext\s+(\d+)\s+(` + weekdayNames + `)s?\b`)

	// "may" is only a month when the surrounding words say so.
	mayBeforeRe = regexp.MustCompile(`(?i)\b(in|on|of|during|by|until|from|to|since|for|through)\s+$`)
	mayAfterRe  = regexp.MustCompile(`^\s+\d`)
)

var monthByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// weekdays are indexed Monday=0 .. Sunday=6.
var weekdayByName = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

// Extract returns every date mention in query, in recognition order, without
// deduplication. Dates are midnight in now's location.
func Extract(query string, now time.Time) []Mention {
	loc := now.Location()
	today := midnight(now)
	var out []Mention

	for _, s := range isoDateRe.FindAllString(query, -1) {
		d, err := time.ParseInLocation(layoutDate, s, loc)
		if err != nil {
			continue
		}
		out = append(out, point(s, d))
	}

	paired := map[time.Month]bool{}
	for _, sm := range monthYearRe.FindAllStringSubmatch(query, -1) {
		mon := monthByName[strings.ToLower(sm[1])]
		year, err := strconv.Atoi(sm[2])
		if err != nil {
			continue
		}
		start, end := monthSpan(year, mon, loc)
		out = append(out, Mention{
			Kind:   MonthYear,
			Text:   mon.String() + " " + sm[2],
			Phrase: sm[0],
			Start:  start,
			End:    end,
		})
		paired[mon] = true
	}

	for _, idx := range monthRe.FindAllStringSubmatchIndex(query, -1) {
		name := strings.ToLower(query[idx[2]:idx[3]])
		mon := monthByName[name]
		if paired[mon] {
			continue
		}
		if name == "may" && !mayIsMonth(query, idx[0], idx[1]) {
			continue
		}
		year := today.Year()
		if mon < today.Month() {
			year++
		}
		start, end := monthSpan(year, mon, loc)
		out = append(out, Mention{
			Kind:   Month,
			Text:   mon.String(),
			Phrase: query[idx[0]:idx[1]],
			Start:  start,
			End:    end,
		})
	}

	if tomorrowRe.MatchString(query) {
		out = append(out, point("tomorrow", today.AddDate(0, 0, 1)))
	}

	if nextWeekRe.MatchString(query) {
		m := point("next week", today.AddDate(0, 0, 7))
		m.Start = today.AddDate(0, 0, 7-weekdayIndex(today))
		m.End = m.Start.AddDate(0, 0, 6)
		out = append(out, m)
	}

	if nextWeekendRe.MatchString(query) {
		m := point("next weekend", nextWeekday(today, 5))
		m.End = m.Start.AddDate(0, 0, 1)
		out = append(out, m)
	}

	if nextMonthRe.MatchString(query) {
		out = append(out, monthAhead("next month", today, 1))
	}

	for _, sm := range nextNUnitRe.FindAllStringSubmatch(query, -1) {
		n, err := strconv.Atoi(sm[1])
		if err != nil || n < 1 {
			continue
		}
		switch strings.ToLower(sm[2]) {
		case "day":
			out = append(out, point(sm[0], today.AddDate(0, 0, n)))
		case "week":
			out = append(out, point(sm[0], today.AddDate(0, 0, 7*n)))
		case "month":
			out = append(out, monthAhead(sm[0], today, n))
		}
	}

	if nextYearRe.MatchString(query) {
		out = append(out, point("next year", today.AddDate(1, 0, 0)))
	}

	for _, sm := range nextWeekdayRe.FindAllStringSubmatch(query, -1) {
		out = append(out, point(sm[0], nextWeekday(today, weekdayByName[strings.ToLower(sm[1])])))
	}

	for _, sm := range nextNWeekdayRe.FindAllStringSubmatch(query, -1) {
		n, err := strconv.Atoi(sm[1])
		if err != nil || n < 1 {
			continue
		}
		first := nextWeekday(today, weekdayByName[strings.ToLower(sm[2])])
		out = append(out, point(sm[0], first.AddDate(0, 0, (n-1)*7)))
	}

	return out
}

// Clean drops repeated mentions (same kind and text) and orders full dates
// before month mentions, keeping first-seen order inside each group.
func Clean(mentions []Mention) []Mention {
	seen := make(map[string]bool, len(mentions))
	var dates, months []Mention
	for _, m := range mentions {
		key := strconv.Itoa(int(m.Kind)) + "|" + m.Text
		if seen[key] {
			continue
		}
		seen[key] = true
		if m.Kind == FullDate {
			dates = append(dates, m)
		} else {
			months = append(months, m)
		}
	}
	return append(dates, months...)
}

// Parse is Extract followed by Clean.
func Parse(query string, now time.Time) []Mention {
	return Clean(Extract(query, now))
}

// Labels renders each mention with Label.
func Labels(mentions []Mention) []string {
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		out = append(out, m.Label())
	}
	return out
}

// Dates returns the YYYY-MM-DD text of the full-date mentions.
func Dates(mentions []Mention) []string {
	var out []string
	for _, m := range mentions {
		if m.Kind == FullDate {
			out = append(out, m.Text)
		}
	}
	return out
}

// Months returns the text of the month and month-year mentions.
func Months(mentions []Mention) []string {
	var out []string
	for _, m := range mentions {
		if m.Kind != FullDate {
			out = append(out, m.Text)
		}
	}
	return out
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(layoutDate)
}

func point(phrase string, d time.Time) Mention {
	return Mention{Kind: FullDate, Text: d.Format(layoutDate), Phrase: phrase, Start: d, End: d}
}

func monthAhead(phrase string, today time.Time, n int) Mention {
	first := time.Date(today.Year(), today.Month()+time.Month(n), 1, 0, 0, 0, 0, today.Location())
	m := point(phrase, first)
	m.End = first.AddDate(0, 1, -1)
	return m
}

func monthSpan(year int, mon time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, mon, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, -1)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// nextWeekday is the first day strictly after today falling on target.
func nextWeekday(today time.Time, target int) time.Time {
	ahead := target - weekdayIndex(today)
	if ahead <= 0 {
		ahead += 7
	}
	return today.AddDate(0, 0, ahead)
}

func mayIsMonth(query string, start, end int) bool {
	return mayBeforeRe.MatchString(query[:start]) || mayAfterRe.MatchString(query[end:])
}
