package ical

import (
	"fmt"
	"time"

	campusnet "campusnet-client/lib/scrapers/campusnet"
	"campusnet-client/lib/timezone"

	ics "github.com/arran4/golang-ical"
)

// WeekToICS serializes a fetched schedule week as an iCalendar
// document. events with unparseable times are skipped, consumers
// feed the result to whatever calendar the device offers.
func WeekToICS(week campusnet.ScheduleWeek) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//campusnet-client//DE")

	for _, day := range week.Days {
		for i, event := range day.Events {
			start, err := eventTime(day.Date, event.StartTime)
			if err != nil {
				continue
			}
			end, err := eventTime(day.Date, event.EndTime)
			if err != nil {
				continue
			}

			uid := fmt.Sprintf(
				"%s-%s-%d@campusnet-client",
				day.Date.Format("20060102"), event.StartTime, i,
			)
			entry := cal.AddEvent(uid)
			entry.SetCreatedTime(timezone.Now())
			entry.SetDtStampTime(timezone.Now())
			entry.SetStartAt(start)
			entry.SetEndAt(end)
			entry.SetSummary(eventSummary(event))
			if event.Room != "" {
				entry.SetLocation(event.Room)
			}
			if event.Lecturer != "" {
				entry.SetDescription(event.Lecturer)
			}
		}
	}

	return cal.Serialize()
}

func eventSummary(event campusnet.Event) string {
	if event.FullTitle != "" {
		return event.FullTitle
	}
	return event.Title
}

func eventTime(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		timezone.Location,
	), nil
}
