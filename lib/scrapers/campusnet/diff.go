package campusnet

import "fmt"

// change detection between a cached snapshot and a freshly fetched
// one. the caller is responsible for the bootstrap rule: with no
// prior snapshot there is nothing to diff against, so these are only
// called when the cache had an entry.

type eventKey struct {
	Date      string
	Title     string
	StartTime string
}

func scheduleKeys(week ScheduleWeek) map[eventKey]Event {
	keys := make(map[eventKey]Event)
	for _, day := range week.Days {
		date := day.Date.Format("2006-01-02")
		for _, event := range day.Events {
			keys[eventKey{
				Date:      date,
				Title:     event.Title,
				StartTime: event.StartTime,
			}] = event
		}
	}
	return keys
}

// DiffSchedule compares two snapshots of the same week. events are
// keyed by (date, title, start time); a key on both sides whose end
// time, room or lecturer differs counts as modified.
func DiffSchedule(old, new ScheduleWeek) ChangeSet {
	changes := ChangeSet{WeekStart: new.WeekStart}

	oldKeys := scheduleKeys(old)
	newKeys := scheduleKeys(new)

	for _, day := range new.Days {
		date := day.Date.Format("2006-01-02")
		for _, event := range day.Events {
			key := eventKey{Date: date, Title: event.Title, StartTime: event.StartTime}
			before, existed := oldKeys[key]
			if !existed {
				changes.AddedEvents = append(changes.AddedEvents, event)
				continue
			}
			if before.EndTime != event.EndTime ||
				before.Room != event.Room ||
				before.Lecturer != event.Lecturer {
				changes.ModifiedEvents = append(changes.ModifiedEvents, EventChange{
					Old: before,
					New: event,
				})
			}
		}
	}

	for _, day := range old.Days {
		date := day.Date.Format("2006-01-02")
		for _, event := range day.Events {
			key := eventKey{Date: date, Title: event.Title, StartTime: event.StartTime}
			if _, exists := newKeys[key]; !exists {
				changes.RemovedEvents = append(changes.RemovedEvents, event)
			}
		}
	}

	return changes
}

// DiffGrades compares two grade reports, keyed by module name. a
// module whose grade was empty (or that did not exist) before and is
// set now is a new grade; a changed non-empty grade is an update.
// ok is false when there is nothing to report, which is distinct
// from an empty-but-present result.
func DiffGrades(old, new GradeReport) (GradeChanges, bool) {
	oldGrades := make(map[string]string, len(old.Modules))
	for _, module := range old.Modules {
		oldGrades[module.Name] = module.GradeValue
	}

	changes := GradeChanges{}
	for _, module := range new.Modules {
		if module.GradeValue == "" {
			continue
		}
		before := oldGrades[module.Name]
		if before == "" {
			changes.NewGrades = append(
				changes.NewGrades,
				fmt.Sprintf("%s: %s", module.Name, module.GradeValue),
			)
			continue
		}
		if before != module.GradeValue {
			changes.UpdatedGrades = append(
				changes.UpdatedGrades,
				fmt.Sprintf("%s: %s → %s", module.Name, before, module.GradeValue),
			)
		}
	}

	if len(changes.NewGrades) == 0 && len(changes.UpdatedGrades) == 0 {
		return GradeChanges{}, false
	}
	return changes, true
}
