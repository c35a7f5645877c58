package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campusnet-client/lib/cachestore"
	"campusnet-client/lib/gradelog"
	"campusnet-client/lib/ical"
	campusnet "campusnet-client/lib/scrapers/campusnet"
	"campusnet-client/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/syncer")

const weekKeyFormat = "2006-01-02"

// grade reports cached under the portal's "currently selected"
// semester when the caller passes none
const currentSemesterKey = "current"

const semesterListKey = "list"

// Service is the facade the UI and background-job layers talk to. it
// composes the portal client, the snapshot cache, the change
// detector and the grade history into the operations they need.
//
// fetches prefer stale cached data over surfacing an error: a fetch
// failure is only visible to the caller when no cached snapshot
// exists at all.
type Service struct {
	scraper *campusnet.Client
	cache   cachestore.Store
	history *gradelog.Store
}

type Options struct {
	Client *campusnet.Client
	Cache  cachestore.Store
	// optional, grade fetches are recorded when set
	History *gradelog.Store
}

func NewService(opts Options) Service {
	return Service{
		scraper: opts.Client,
		cache:   opts.Cache,
		history: opts.History,
	}
}

func (s Service) Login(ctx context.Context, username, password string) error {
	return s.scraper.Login(ctx, username, password)
}

func (s Service) Logout() {
	s.scraper.Logout()
}

func (s Service) IsAuthenticated() bool {
	return s.scraper.IsAuthenticated()
}

// withReauth runs a fetch and, when the portal answers with its
// session-expired page, transparently re-authenticates once with the
// last-used credentials and retries. this is the only automatic
// retry in the orchestrator.
func withReauth[T any](ctx context.Context, s Service, fetch func(context.Context) (T, error)) (T, error) {
	out, err := fetch(ctx)
	if !errors.Is(err, campusnet.ErrSessionExpired) {
		return out, err
	}

	slog.InfoContext(ctx, "session expired, re-authenticating")
	reauthErr := s.scraper.Reauthenticate(ctx)
	if reauthErr != nil {
		return out, errors.Join(err, reauthErr)
	}
	return fetch(ctx)
}

// FetchWeek returns the schedule for the week containing date,
// enriched with detail-page data where available, and refreshes the
// cache. on failure the cached week is served if it exists.
func (s Service) FetchWeek(ctx context.Context, date time.Time) (campusnet.ScheduleWeek, error) {
	ctx, span := tracer.Start(ctx, "service:FetchWeek")
	defer span.End()

	weekStart := timezone.StartOfWeek(date)
	key := weekStart.Format(weekKeyFormat)
	span.SetAttributes(attribute.String("week", key))

	week, err := withReauth(ctx, s, func(ctx context.Context) (campusnet.ScheduleWeek, error) {
		return s.scraper.FetchWeek(ctx, date)
	})
	if err != nil {
		span.RecordError(err)

		var cached campusnet.ScheduleWeek
		ok, cacheErr := s.cache.Get(ctx, cachestore.KindSchedule, key, &cached)
		if cacheErr == nil && ok {
			span.SetStatus(codes.Ok, "served stale cache")
			slog.WarnContext(ctx, "serving stale schedule", "week", key, "err", err)
			return cached, nil
		}
		span.SetStatus(codes.Error, "fetch failed with no cached fallback")
		return campusnet.ScheduleWeek{}, err
	}

	if err := s.scraper.EnrichWeek(ctx, &week); err != nil {
		// enrichment failures degrade single events, never the week
		slog.WarnContext(ctx, "partial event detail enrichment", "week", key, "err", err)
	}

	if err := s.cache.Set(ctx, cachestore.KindSchedule, key, week); err != nil {
		slog.WarnContext(ctx, "failed to cache schedule", "week", key, "err", err)
	}
	return week, nil
}

// FetchGrades returns the grade report for a semester (empty means
// the portal's currently selected one), records it in the grade
// history and refreshes the cache. on failure the cached report is
// served if it exists.
func (s Service) FetchGrades(ctx context.Context, semester string) (campusnet.GradeReport, error) {
	ctx, span := tracer.Start(ctx, "service:FetchGrades")
	defer span.End()

	key := semester
	if key == "" {
		key = currentSemesterKey
	}
	span.SetAttributes(attribute.String("semester", key))

	report, err := withReauth(ctx, s, func(ctx context.Context) (campusnet.GradeReport, error) {
		return s.scraper.FetchGrades(ctx, semester)
	})
	if err != nil {
		span.RecordError(err)

		var cached campusnet.GradeReport
		ok, cacheErr := s.cache.Get(ctx, cachestore.KindGrades, key, &cached)
		if cacheErr == nil && ok {
			span.SetStatus(codes.Ok, "served stale cache")
			slog.WarnContext(ctx, "serving stale grades", "semester", key, "err", err)
			return cached, nil
		}
		span.SetStatus(codes.Error, "fetch failed with no cached fallback")
		return campusnet.GradeReport{}, err
	}

	if err := s.cache.Set(ctx, cachestore.KindGrades, key, report); err != nil {
		slog.WarnContext(ctx, "failed to cache grades", "semester", key, "err", err)
	}
	s.recordGrades(ctx, report)
	return report, nil
}

func (s Service) recordGrades(ctx context.Context, report campusnet.GradeReport) {
	if s.history == nil {
		return
	}
	if err := s.history.Push(ctx, report, timezone.Now()); err != nil {
		slog.WarnContext(ctx, "failed to record grade snapshot", "semester", report.Semester, "err", err)
	}
}

// ListSemesters returns the semesters offered by the grade page,
// serving the cached list on failure.
func (s Service) ListSemesters(ctx context.Context) ([]campusnet.Semester, error) {
	ctx, span := tracer.Start(ctx, "service:ListSemesters")
	defer span.End()

	semesters, err := withReauth(ctx, s, func(ctx context.Context) ([]campusnet.Semester, error) {
		return s.scraper.Semesters(ctx)
	})
	if err != nil {
		span.RecordError(err)

		var cached []campusnet.Semester
		ok, cacheErr := s.cache.Get(ctx, cachestore.KindSemesters, semesterListKey, &cached)
		if cacheErr == nil && ok {
			span.SetStatus(codes.Ok, "served stale cache")
			return cached, nil
		}
		span.SetStatus(codes.Error, "fetch failed with no cached fallback")
		return nil, err
	}

	if err := s.cache.Set(ctx, cachestore.KindSemesters, semesterListKey, semesters); err != nil {
		slog.WarnContext(ctx, "failed to cache semester list", "err", err)
	}
	return semesters, nil
}

// FetchNotifications reads the message inbox. notifications are not
// cached, the portal keeps its own unread state.
func (s Service) FetchNotifications(ctx context.Context) ([]campusnet.NotificationItem, error) {
	ctx, span := tracer.Start(ctx, "service:FetchNotifications")
	defer span.End()

	return withReauth(ctx, s, func(ctx context.Context) ([]campusnet.NotificationItem, error) {
		return s.scraper.FetchNotifications(ctx)
	})
}

// ExportWeekICS fetches a week and serializes it as an iCalendar
// document for on-device calendar consumers.
func (s Service) ExportWeekICS(ctx context.Context, date time.Time) (string, error) {
	week, err := s.FetchWeek(ctx, date)
	if err != nil {
		return "", err
	}
	return ical.WeekToICS(week), nil
}

// CheckForChanges refetches every cached schedule week and grade
// report and diffs each against its cached snapshot. a week or
// semester with no cache entry is a bootstrap load: it is fetched by
// FetchWeek/FetchGrades at some point, cached there, and only
// participates in diffing from then on, so a first load never
// produces a notification.
func (s Service) CheckForChanges(ctx context.Context) ([]campusnet.ChangeSet, *campusnet.GradeChanges, error) {
	ctx, span := tracer.Start(ctx, "service:CheckForChanges")
	defer span.End()

	var errList []error

	var changeSets []campusnet.ChangeSet
	weekKeys, err := s.cache.Keys(ctx, cachestore.KindSchedule)
	if err != nil {
		errList = append(errList, err)
	}
	for _, key := range weekKeys {
		var old campusnet.ScheduleWeek
		ok, err := s.cache.Get(ctx, cachestore.KindSchedule, key, &old)
		if err != nil || !ok {
			// expired between listing and reading, the next fetch
			// is a fresh bootstrap
			continue
		}

		date, err := time.ParseInLocation(weekKeyFormat, key, timezone.Location)
		if err != nil {
			slog.WarnContext(ctx, "unparseable schedule cache key", "key", key)
			continue
		}

		fresh, err := withReauth(ctx, s, func(ctx context.Context) (campusnet.ScheduleWeek, error) {
			return s.scraper.FetchWeek(ctx, date)
		})
		if err != nil {
			errList = append(errList, err)
			continue
		}
		// the cached snapshot was enriched on fetch, diff enriched
		// against enriched
		if err := s.scraper.EnrichWeek(ctx, &fresh); err != nil {
			slog.WarnContext(ctx, "partial event detail enrichment", "week", key, "err", err)
		}

		changes := campusnet.DiffSchedule(old, fresh)
		if !changes.Empty() {
			changeSets = append(changeSets, changes)
		}
		if err := s.cache.Set(ctx, cachestore.KindSchedule, key, fresh); err != nil {
			errList = append(errList, err)
		}
	}

	gradeChanges := s.checkGradeChanges(ctx, &errList)

	span.SetAttributes(
		attribute.Int("schedule_changes", len(changeSets)),
		attribute.Bool("grade_changes", gradeChanges != nil),
	)
	return changeSets, gradeChanges, errors.Join(errList...)
}

func (s Service) checkGradeChanges(ctx context.Context, errList *[]error) *campusnet.GradeChanges {
	keys, err := s.cache.Keys(ctx, cachestore.KindGrades)
	if err != nil {
		*errList = append(*errList, err)
		return nil
	}

	var aggregate campusnet.GradeChanges
	found := false
	for _, key := range keys {
		var old campusnet.GradeReport
		ok, err := s.cache.Get(ctx, cachestore.KindGrades, key, &old)
		if err != nil || !ok {
			continue
		}

		semester := key
		if semester == currentSemesterKey {
			semester = ""
		}
		fresh, err := withReauth(ctx, s, func(ctx context.Context) (campusnet.GradeReport, error) {
			return s.scraper.FetchGrades(ctx, semester)
		})
		if err != nil {
			*errList = append(*errList, err)
			continue
		}

		if changes, ok := campusnet.DiffGrades(old, fresh); ok {
			found = true
			aggregate.NewGrades = append(aggregate.NewGrades, changes.NewGrades...)
			aggregate.UpdatedGrades = append(aggregate.UpdatedGrades, changes.UpdatedGrades...)
		}

		if err := s.cache.Set(ctx, cachestore.KindGrades, key, fresh); err != nil {
			*errList = append(*errList, err)
		}
		s.recordGrades(ctx, fresh)
	}

	if !found {
		return nil
	}
	return &aggregate
}
