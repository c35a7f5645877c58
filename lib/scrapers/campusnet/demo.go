package campusnet

import (
	"time"

	"campusnet-client/lib/timezone"
)

// deterministic canned data served while the demo credential pair is
// active. no network request is ever made in demo mode.

func demoWeek(date time.Time) ScheduleWeek {
	weekStart := timezone.StartOfWeek(date)

	week := ScheduleWeek{WeekStart: weekStart}
	for i := 0; i < 7; i++ {
		week.Days = append(week.Days, Day{Date: weekStart.AddDate(0, 0, i)})
	}

	week.Days[0].Events = []Event{
		{
			Title:      "Mathematik I",
			StartTime:  "08:15",
			EndTime:    "09:45",
			Room:       "HOR-120",
			Lecturer:   "Prof. Dr. Weber",
			CourseCode: "T3INF1001",
		},
		{
			Title:     "Programmieren",
			StartTime: "10:00",
			EndTime:   "11:30",
			Room:      "HOR-135, HOR-136",
			Lecturer:  "Dr. Schneider",
		},
	}
	week.Days[2].Events = []Event{
		{
			Title:     "Theoretische Informatik",
			StartTime: "14:00",
			EndTime:   "15:30",
			Room:      "ESB-214",
			Lecturer:  "Prof. Dr. Fischer",
		},
	}

	return week
}

func demoSemesters() []Semester {
	return []Semester{
		{Value: "000000015158000", DisplayName: "SoSe 2024", IsSelected: true},
		{Value: "000000015141000", DisplayName: "WiSe 2023/24"},
	}
}

func demoGrades(semester string) GradeReport {
	if semester == "" {
		semester = demoSemesters()[0].Value
	}
	return GradeReport{
		Semester: semester,
		Modules: []Module{
			{
				Id:         "T3INF1001",
				Name:       "Mathematik I",
				Credits:    "5",
				GradeValue: "1,3",
				State:      ModulePassed,
			},
			{
				Id:         "T3INF1002",
				Name:       "Programmieren",
				Credits:    "9",
				GradeValue: "2,0",
				State:      ModulePassed,
			},
			{
				Id:      "T3INF1003",
				Name:    "Theoretische Informatik",
				Credits: "8",
				State:   ModulePending,
			},
		},
		GpaTotal:      "1,7",
		CreditsGained: "14",
		CreditsTotal:  "22",
	}
}

func demoNotifications() []NotificationItem {
	return []NotificationItem{
		{
			Id:       "demo-1",
			Date:     "01.07.2024",
			Time:     "08:02",
			Sender:   "Studiengangssekretariat",
			Subject:  "Stundenplanänderung: Mathematik I verschoben",
			Type:     NotificationScheduleChange,
			IsUnread: true,
		},
		{
			Id:      "demo-2",
			Date:    "28.06.2024",
			Time:    "12:41",
			Sender:  "Prüfungsamt",
			Subject: "Willkommen im neuen Semester",
			Type:    NotificationGeneralMessage,
		},
	}
}
