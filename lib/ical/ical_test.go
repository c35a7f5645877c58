package ical

import (
	"strings"
	"testing"
	"time"

	campusnet "campusnet-client/lib/scrapers/campusnet"
	"campusnet-client/lib/timezone"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/require"
)

func TestWeekToICS(t *testing.T) {
	weekStart := time.Date(2024, 7, 1, 0, 0, 0, 0, timezone.Location)
	week := campusnet.ScheduleWeek{
		WeekStart: weekStart,
		Days: []campusnet.Day{
			{
				Date: weekStart,
				Events: []campusnet.Event{
					{
						Title:     "Mathematik I",
						StartTime: "08:15",
						EndTime:   "09:45",
						Room:      "HOR-120",
						Lecturer:  "Prof. Dr. Weber",
					},
					// garbage times are skipped, not fatal
					{Title: "Kaputt", StartTime: "acht", EndTime: "neun"},
				},
			},
		},
	}

	serialized := WeekToICS(week)
	require.Contains(t, serialized, "BEGIN:VCALENDAR")
	require.Contains(t, serialized, "Mathematik I")
	require.Contains(t, serialized, "HOR-120")
	require.NotContains(t, serialized, "Kaputt")

	// and it round-trips through the parser
	cal, err := ics.ParseCalendar(strings.NewReader(serialized))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	start, err := cal.Events()[0].GetStartAt()
	require.NoError(t, err)
	require.Equal(t, 8, start.In(timezone.Location).Hour())
}
