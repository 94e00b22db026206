package engine

import "time"

// DayStatus classifies one attendance cell.
type DayStatus int

const (
	DayNeutral DayStatus = iota
	DayAttended
	DayMissed
)

// DayCell is one rendered day of the attendance calendar.
type DayCell struct {
	Day     int
	Status  DayStatus
	Today   bool
	InMonth bool
}

// MonthCells classifies every day of the month containing ref. A day is
// attended when its number is in attendedDays and it is not in the future;
// stale caches sometimes claim lookahead attendance and those claims are
// clamped. A day is missed when it lies strictly before today and was not
// attended. The today marker is independent of both.
func MonthCells(attendedDays []int, ref time.Time) []DayCell {
	attended := daySet(attendedDays)
	today := ref.Day()
	last := daysInMonth(ref)

	cells := make([]DayCell, 0, last)
	for day := 1; day <= last; day++ {
		c := DayCell{Day: day, Today: day == today, InMonth: true}
		switch {
		case attended[day] && day <= today:
			c.Status = DayAttended
		case day < today:
			c.Status = DayMissed
		}
		cells = append(cells, c)
	}
	return cells
}

// WeekCells classifies the Monday-anchored 7-day window containing ref.
// Days spilling into adjacent months render neutrally; only days of the
// reference month can be attended or missed.
func WeekCells(attendedDays []int, ref time.Time) []DayCell {
	attended := daySet(attendedDays)
	today := ref.Day()

	offset := int(ref.Weekday()-time.Monday+7) % 7
	monday := ref.AddDate(0, 0, -offset)

	cells := make([]DayCell, 0, 7)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		inMonth := d.Month() == ref.Month() && d.Year() == ref.Year()
		c := DayCell{Day: d.Day(), Today: inMonth && d.Day() == today, InMonth: inMonth}
		if inMonth {
			switch {
			case attended[d.Day()] && d.Day() <= today:
				c.Status = DayAttended
			case d.Day() < today:
				c.Status = DayMissed
			}
		}
		cells = append(cells, c)
	}
	return cells
}

func daySet(days []int) map[int]bool {
	set := make(map[int]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

func daysInMonth(ref time.Time) int {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return first.AddDate(0, 1, -1).Day()
}
