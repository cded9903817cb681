// Package agecalc derives ages and adult status from birthdate strings.
package agecalc

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPattern is the birthdate pattern used when none is configured.
const DefaultPattern = "MM/dd/yyyy"

var ErrInvalidDateFormat = errors.New("invalid date format")

// patternTokens maps date pattern tokens to Go layout fragments. Longer
// tokens come first so "yyyy" wins over "yy".
var patternTokens = []struct{ token, layout string }{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
}

// LayoutFromPattern converts a day/month/year pattern such as "MM/dd/yyyy"
// into a Go time layout. Letters other than y, M and d are rejected.
func LayoutFromPattern(pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("empty date pattern")
	}
	var b strings.Builder
	var sawYear, sawMonth, sawDay bool
	rest := pattern
	for rest != "" {
		matched := false
		for _, t := range patternTokens {
			if strings.HasPrefix(rest, t.token) {
				b.WriteString(t.layout)
				rest = rest[len(t.token):]
				switch t.token[0] {
				case 'y':
					sawYear = true
				case 'M':
					sawMonth = true
				case 'd':
					sawDay = true
				}
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		c := rest[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return "", fmt.Errorf("unsupported token %q in date pattern %q", string(c), pattern)
		}
		b.WriteByte(c)
		rest = rest[1:]
	}
	if !sawYear || !sawMonth || !sawDay {
		return "", fmt.Errorf("date pattern %q must contain year, month and day", pattern)
	}
	return b.String(), nil
}

// Calculator parses birthdates against one fixed pattern.
type Calculator struct {
	pattern string
	layout  string
	now     func() time.Time
}

// New returns a Calculator for pattern. now may be nil, in which case
// time.Now is used.
func New(pattern string, now func() time.Time) (*Calculator, error) {
	layout, err := LayoutFromPattern(pattern)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Calculator{pattern: pattern, layout: layout, now: now}, nil
}

func (c *Calculator) Pattern() string { return c.pattern }

// Parse returns the calendar date described by birthdate.
func (c *Calculator) Parse(birthdate string) (time.Time, error) {
	t, err := time.Parse(c.layout, birthdate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match %s", ErrInvalidDateFormat, birthdate, c.pattern)
	}
	return t, nil
}

// Validate reports whether birthdate matches the calculator's pattern.
func (c *Calculator) Validate(birthdate string) error {
	_, err := c.Parse(birthdate)
	return err
}

// Age returns the whole years elapsed between birthdate and asOf. The year
// only counts once the birthday month and day have been reached; someone born
// on Feb 29 turns a year older on Mar 1 in non-leap years. Birthdates after
// asOf yield 0.
func (c *Calculator) Age(birthdate string, asOf time.Time) (int, error) {
	born, err := c.Parse(birthdate)
	if err != nil {
		return 0, err
	}
	return yearsBetween(born, asOf), nil
}

// AgeNow is Age evaluated at the calculator's current time.
func (c *Calculator) AgeNow(birthdate string) (int, error) {
	return c.Age(birthdate, c.now())
}

// IsAdult reports whether the age at asOf is at least threshold.
func (c *Calculator) IsAdult(birthdate string, asOf time.Time, threshold int) (bool, error) {
	age, err := c.Age(birthdate, asOf)
	if err != nil {
		return false, err
	}
	return age >= threshold, nil
}

// Now returns the calculator's current time.
func (c *Calculator) Now() time.Time {
	return c.now()
}

func yearsBetween(born, asOf time.Time) int {
	y1, m1, d1 := born.Date()
	y2, m2, d2 := asOf.Date()
	years := y2 - y1
	if m2 < m1 || (m2 == m1 && d2 < d1) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
