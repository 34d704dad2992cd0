package types

import (
	"sort"
	"time"
)

// Calendar is the ordered sequence of trading dates a simulation walks.
type Calendar []time.Time

// WeekdayCalendar returns every Monday-Friday between start and end inclusive.
func WeekdayCalendar(start, end time.Time) Calendar {
	var dates Calendar

	for d := Day(start); !d.After(Day(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		dates = append(dates, d)
	}

	return dates
}

// CalendarFromDates deduplicates and orders arbitrary dates into a calendar.
func CalendarFromDates(dates []time.Time) Calendar {
	seen := make(map[time.Time]struct{}, len(dates))

	var cal Calendar

	for _, d := range dates {
		day := Day(d)
		if _, ok := seen[day]; ok {
			continue
		}

		seen[day] = struct{}{}

		cal = append(cal, day)
	}

	sort.Slice(cal, func(i, j int) bool { return cal[i].Before(cal[j]) })

	return cal
}

// Clamp returns the calendar restricted to [start, end].
func (c Calendar) Clamp(start, end time.Time) Calendar {
	var out Calendar

	for _, d := range c {
		if d.Before(Day(start)) || d.After(Day(end)) {
			continue
		}

		out = append(out, d)
	}

	return out
}
