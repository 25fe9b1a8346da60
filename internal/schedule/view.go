package schedule

import "time"

// workDays per displayed week: Monday through Saturday.
const workDays = 6

// TodayDuty returns the record whose date equals today, if any. Absence is
// not an error; it means the roster has no data for today.
func TodayDuty(records []DutyRecord, today time.Time) (DutyRecord, bool) {
	d := DateOnly(today)
	for _, r := range records {
		if r.Date.Equal(d) {
			return r, true
		}
	}
	return DutyRecord{}, false
}

// TwoWorkWeeks projects the roster onto the current and next work week:
// always exactly 2 groups of 6 consecutive Monday–Saturday dates. Dates
// without a record get a placeholder with empty names so the grid is always
// complete. A Sunday "today" belongs to the upcoming week, not the past one.
func TwoWorkWeeks(records []DutyRecord, today time.Time) [][]DutyRecord {
	d := DateOnly(today)
	weekStart := d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
	if d.Weekday() == time.Sunday {
		weekStart = d.AddDate(0, 0, 1)
	}

	byDate := make(map[time.Time]DutyRecord, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}

	weeks := make([][]DutyRecord, 0, 2)
	for w := 0; w < 2; w++ {
		week := make([]DutyRecord, 0, workDays)
		for day := 0; day < workDays; day++ {
			date := weekStart.AddDate(0, 0, w*7+day)
			if r, ok := byDate[date]; ok {
				week = append(week, r)
				continue
			}
			week = append(week, DutyRecord{
				Date:      date,
				DateLabel: date.Format("02.01.2006"),
				Weekday:   WeekdayCode(date),
			})
		}
		weeks = append(weeks, week)
	}
	return weeks
}
