package gradelog

import (
	"context"
	"database/sql"
	"time"

	campusnet "campusnet-client/lib/scrapers/campusnet"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Store keeps a history of grade snapshots so grade evolution stays
// visible after the portal has overwritten its own state. appends
// only, one row per module with a set grade.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Push appends one snapshot of a grade report. modules without a set
// grade are skipped; a snapshot taken the same day for the same
// semester replaces the earlier one to keep the series readable.
func (s Store) Push(ctx context.Context, report campusnet.GradeReport, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	startOfDay := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	startOfNextDay := startOfDay.AddDate(0, 0, 1)

	_, err = tx.ExecContext(ctx, `
		DELETE FROM grade_snapshot
		WHERE semester = ? AND taken_at >= ? AND taken_at < ?`,
		report.Semester, startOfDay.Unix(), startOfNextDay.Unix(),
	)
	if err != nil {
		return err
	}

	for _, module := range report.Modules {
		if module.GradeValue == "" {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO grade_snapshot (semester, module, grade, taken_at)
			VALUES (?, ?, ?, ?)`,
			report.Semester, module.Name, module.GradeValue, at.Unix(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type Snapshot struct {
	Grade   string
	TakenAt time.Time
}

type ModuleSeries struct {
	Module    string
	Snapshots []Snapshot
}

// Pull returns the recorded series per module for one semester,
// oldest snapshot first.
func (s Store) Pull(ctx context.Context, semester string) ([]ModuleSeries, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT module, grade, taken_at FROM grade_snapshot
		WHERE semester = ?
		ORDER BY module, taken_at`,
		semester,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []ModuleSeries
	for rows.Next() {
		var module, grade string
		var takenAt int64
		if err := rows.Scan(&module, &grade, &takenAt); err != nil {
			return nil, err
		}

		snapshot := Snapshot{Grade: grade, TakenAt: time.Unix(takenAt, 0)}
		if len(series) > 0 && series[len(series)-1].Module == module {
			last := &series[len(series)-1]
			last.Snapshots = append(last.Snapshots, snapshot)
			continue
		}
		series = append(series, ModuleSeries{
			Module:    module,
			Snapshots: []Snapshot{snapshot},
		})
	}
	return series, rows.Err()
}
