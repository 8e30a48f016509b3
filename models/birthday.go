// ABOUTME: Birthday accessors for contact records
// ABOUTME: Converts the structured day/month/year between strings, Unix timestamps and time.Time
package models

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/people/v1"
)

// DefaultDateLayout is used when a caller passes an empty layout.
const DefaultDateLayout = "2006-01-02"

var birthdayLayouts = []string{
	"2006-01-02",
	"20060102",
	time.RFC3339,
	"02.01.2006",
	"01/02/2006",
}

// SetDateOfBirth stores the calendar date of t. A zero time is ignored.
func (c *Contact) SetDateOfBirth(t time.Time) {
	if t.IsZero() {
		return
	}
	c.setBirthday(&people.Date{Year: int64(t.Year()), Month: int64(t.Month()), Day: int64(t.Day())})
}

// SetDateOfBirthUnix stores the UTC calendar date of a Unix timestamp. Zero is ignored.
func (c *Contact) SetDateOfBirthUnix(ts int64) {
	if ts == 0 {
		return
	}
	c.SetDateOfBirth(time.Unix(ts, 0).UTC())
}

// SetDateOfBirthString parses a date such as 1985-03-07 or the year-less --03-07.
// An empty string is ignored.
func (c *Contact) SetDateOfBirthString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "--") {
		var month, day int64
		rest := strings.ReplaceAll(strings.TrimPrefix(s, "--"), "-", "")
		if _, err := fmt.Sscanf(rest, "%2d%2d", &month, &day); err != nil || month < 1 || month > 12 || day < 1 || day > 31 {
			return NewError(CodeValidation, "set date of birth", fmt.Sprintf("invalid date %q", s))
		}
		c.setBirthday(&people.Date{Month: month, Day: day})
		return nil
	}
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			c.SetDateOfBirth(t)
			return nil
		}
	}
	return NewError(CodeValidation, "set date of birth", fmt.Sprintf("invalid date %q", s))
}

func (c *Contact) setBirthday(d *people.Date) {
	p := c.person
	if len(p.Birthdays) == 0 || p.Birthdays[0] == nil {
		p.Birthdays = append([]*people.Birthday{{}}, dropFirstNil(p.Birthdays)...)
	}
	p.Birthdays[0].Date = d
	p.Birthdays[0].Text = ""
}

func dropFirstNil(b []*people.Birthday) []*people.Birthday {
	if len(b) > 0 && b[0] == nil {
		return b[1:]
	}
	return b
}

func (c *Contact) birthdayDate() *people.Date {
	p := c.person
	if len(p.Birthdays) == 0 || p.Birthdays[0] == nil {
		return nil
	}
	d := p.Birthdays[0].Date
	if d == nil || d.Month == 0 || d.Day == 0 {
		return nil
	}
	return d
}

// DateOfBirth returns the birthday at UTC midnight. A year-less birthday has year 0.
func (c *Contact) DateOfBirth() (time.Time, bool) {
	d := c.birthdayDate()
	if d == nil {
		return time.Time{}, false
	}
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC), true
}

// DateOfBirthString formats the birthday with layout, "" when unset.
// Year-less birthdays are always rendered as --MM-DD.
func (c *Contact) DateOfBirthString(layout string) string {
	d := c.birthdayDate()
	if d == nil {
		return ""
	}
	if d.Year == 0 {
		return fmt.Sprintf("--%02d-%02d", d.Month, d.Day)
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	t, _ := c.DateOfBirth()
	return t.Format(layout)
}

// DateOfBirthUnix returns the birthday as a UTC-midnight timestamp, 0 when unset or year-less.
func (c *Contact) DateOfBirthUnix() int64 {
	d := c.birthdayDate()
	if d == nil || d.Year == 0 {
		return 0
	}
	t, _ := c.DateOfBirth()
	return t.Unix()
}
