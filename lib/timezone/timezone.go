package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic(err)
	}
}

// force the portal's timezone so week-start and caption date math
// stays stable no matter where the process happens to run
func Now() time.Time {
	return time.Now().In(Location)
}

// Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	t = t.In(Location)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, Location)
}
