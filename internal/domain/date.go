package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form. Slots are whole-day units, so no time of day is kept.
type Date string

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return Date(t.Format(DateLayout)), nil
}

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

func (d Date) String() string {
	return string(d)
}

// Week returns the seven consecutive days starting at start.
func Week(start Date) []Date {
	days := make([]Date, 7)
	for i := range days {
		days[i] = start.AddDays(i)
	}
	return days
}

// DaysBetween returns every day in [from, to]; empty when to is before from.
func DaysBetween(from, to Date) []Date {
	var days []Date
	for d := from; d <= to; d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
