package campusnet

import "time"

// Session holds everything the portal hands out after a successful
// login. The token rotates on every fresh login and is embedded into
// every follow-up URL.
type Session struct {
	Token     string
	Endpoints map[string]string

	Authenticated bool
	DemoMode      bool
}

// named entries of Session.Endpoints
const (
	EndpointSchedule      = "schedule"
	EndpointGrades        = "grades"
	EndpointNotifications = "notifications"
	EndpointLogout        = "logout"
)

type Event struct {
	Title     string
	StartTime string // "HH:mm"
	EndTime   string // "HH:mm"
	Room      string
	Lecturer  string

	CourseCode string
	FullTitle  string
	DetailUrl  string
}

type Day struct {
	Date   time.Time
	Events []Event
}

// ScheduleWeek is one parsed week of the timetable. Events within a
// day come back in document order, sorting is left to presentation.
type ScheduleWeek struct {
	WeekStart time.Time
	Days      []Day
}

type Semester struct {
	Value       string
	DisplayName string
	IsSelected  bool
}

type ModuleState int

const (
	ModulePending ModuleState = iota
	ModulePassed
	ModuleFailed
)

func (s ModuleState) String() string {
	switch s {
	case ModulePassed:
		return "bestanden"
	case ModuleFailed:
		return "nicht bestanden"
	}
	return "offen"
}

type Module struct {
	Id      string
	Name    string
	Credits string
	// raw grade text, empty when the portal shows "noch nicht gesetzt"
	GradeValue string
	State      ModuleState
}

type GradeReport struct {
	Semester      string
	Modules       []Module
	GpaTotal      string
	CreditsGained string
	CreditsTotal  string
}

type NotificationType int

const (
	NotificationGeneralMessage NotificationType = iota
	NotificationScheduleChange
	NotificationScheduleSet
)

type NotificationItem struct {
	Id        string
	Date      string
	Time      string
	Sender    string
	Subject   string
	Type      NotificationType
	IsUnread  bool
	DetailUrl string
}

// EventChange pairs the cached and freshly fetched form of a
// modified event.
type EventChange struct {
	Old Event
	New Event
}

type ChangeSet struct {
	WeekStart      time.Time
	AddedEvents    []Event
	RemovedEvents  []Event
	ModifiedEvents []EventChange
}

func (c ChangeSet) Empty() bool {
	return len(c.AddedEvents) == 0 &&
		len(c.RemovedEvents) == 0 &&
		len(c.ModifiedEvents) == 0
}

// GradeChanges carries ready-to-display delta lines.
type GradeChanges struct {
	NewGrades     []string
	UpdatedGrades []string
}
