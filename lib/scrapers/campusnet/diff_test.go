package campusnet

import (
	"testing"
	"time"

	"campusnet-client/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testWeek() ScheduleWeek {
	weekStart := time.Date(2024, 7, 1, 0, 0, 0, 0, timezone.Location)
	week := ScheduleWeek{WeekStart: weekStart}
	for i := 0; i < 7; i++ {
		week.Days = append(week.Days, Day{Date: weekStart.AddDate(0, 0, i)})
	}
	week.Days[0].Events = []Event{
		{Title: "Mathematik I", StartTime: "08:15", EndTime: "09:45", Room: "HOR-120", Lecturer: "Weber"},
		{Title: "Programmieren", StartTime: "10:00", EndTime: "11:30", Room: "HOR-135", Lecturer: "Schneider"},
	}
	week.Days[2].Events = []Event{
		{Title: "Theoretische Informatik", StartTime: "14:00", EndTime: "15:30", Room: "ESB-214", Lecturer: "Fischer"},
	}
	return week
}

func TestDiffScheduleIdempotent(t *testing.T) {
	week := testWeek()
	changes := DiffSchedule(week, week)
	require.True(t, changes.Empty(), "diffing a snapshot against itself must be empty: %s", cmp.Diff(ChangeSet{WeekStart: week.WeekStart}, changes))
}

func TestDiffSchedule(t *testing.T) {
	old := testWeek()
	updated := testWeek()

	// moved to a different room
	updated.Days[0].Events[0].Room = "HOR-220"
	// cancelled
	updated.Days[2].Events = nil
	// newly scheduled
	updated.Days[4].Events = []Event{
		{Title: "Datenbanken", StartTime: "09:00", EndTime: "10:30", Room: "ESB-110"},
	}

	changes := DiffSchedule(old, updated)

	require.Len(t, changes.AddedEvents, 1)
	require.Equal(t, "Datenbanken", changes.AddedEvents[0].Title)

	require.Len(t, changes.RemovedEvents, 1)
	require.Equal(t, "Theoretische Informatik", changes.RemovedEvents[0].Title)

	require.Len(t, changes.ModifiedEvents, 1)
	require.Equal(t, "HOR-120", changes.ModifiedEvents[0].Old.Room)
	require.Equal(t, "HOR-220", changes.ModifiedEvents[0].New.Room)

	require.Equal(t, updated.WeekStart, changes.WeekStart)
}

func TestDiffScheduleTimeChangeIsAddAndRemove(t *testing.T) {
	old := testWeek()
	updated := testWeek()
	// a different start time changes the key, so the event shows up
	// as one removal plus one addition
	updated.Days[0].Events[0].StartTime = "09:00"

	changes := DiffSchedule(old, updated)
	require.Len(t, changes.AddedEvents, 1)
	require.Len(t, changes.RemovedEvents, 1)
	require.Empty(t, changes.ModifiedEvents)
}

func TestDiffGrades(t *testing.T) {
	old := GradeReport{
		Semester: "sem-1",
		Modules: []Module{
			// "noch nicht gesetzt" parses to an empty grade value
			{Name: "Mathematik I", GradeValue: ""},
			{Name: "Programmieren", GradeValue: "2,3"},
			{Name: "Theoretische Informatik", GradeValue: "1,7"},
		},
	}
	updated := GradeReport{
		Semester: "sem-1",
		Modules: []Module{
			{Name: "Mathematik I", GradeValue: "1,3"},
			{Name: "Programmieren", GradeValue: "2,0"},
			{Name: "Theoretische Informatik", GradeValue: "1,7"},
		},
	}

	changes, ok := DiffGrades(old, updated)
	require.True(t, ok)

	// previously unset counts as new, not updated
	require.Equal(t, []string{"Mathematik I: 1,3"}, changes.NewGrades)
	require.Equal(t, []string{"Programmieren: 2,3 → 2,0"}, changes.UpdatedGrades)
}

func TestDiffGradesNothingToReport(t *testing.T) {
	report := GradeReport{
		Semester: "sem-1",
		Modules: []Module{
			{Name: "Mathematik I", GradeValue: "1,3"},
		},
	}
	_, ok := DiffGrades(report, report)
	require.False(t, ok)

	_, ok = DiffGrades(GradeReport{}, GradeReport{})
	require.False(t, ok)
}
