package gradelog

import (
	"context"
	"testing"
	"time"

	campusnet "campusnet-client/lib/scrapers/campusnet"
	"campusnet-client/lib/testutil"
	"campusnet-client/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "gradelog",
		DbSchema: Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	day1 := time.Date(2024, 7, 1, 9, 0, 0, 0, timezone.Location)
	day2 := day1.AddDate(0, 0, 1)

	err := store.Push(ctx, campusnet.GradeReport{
		Semester: "sem-1",
		Modules: []campusnet.Module{
			{Name: "Mathematik I", GradeValue: "1,7"},
			// unset grades are not recorded
			{Name: "Programmieren", GradeValue: ""},
		},
	}, day1)
	require.NoError(t, err)

	err = store.Push(ctx, campusnet.GradeReport{
		Semester: "sem-1",
		Modules: []campusnet.Module{
			{Name: "Mathematik I", GradeValue: "1,3"},
			{Name: "Programmieren", GradeValue: "2,0"},
		},
	}, day2)
	require.NoError(t, err)

	series, err := store.Pull(ctx, "sem-1")
	require.NoError(t, err)
	require.Len(t, series, 2)

	var math, prog *ModuleSeries
	for i := range series {
		switch series[i].Module {
		case "Mathematik I":
			math = &series[i]
		case "Programmieren":
			prog = &series[i]
		}
	}
	require.NotNil(t, math)
	require.NotNil(t, prog)
	require.Len(t, math.Snapshots, 2)
	require.Equal(t, "1,7", math.Snapshots[0].Grade)
	require.Equal(t, "1,3", math.Snapshots[1].Grade)
	require.Len(t, prog.Snapshots, 1)

	// unknown semester yields an empty series
	series, err = store.Pull(ctx, "sem-2")
	require.NoError(t, err)
	require.Empty(t, series)
}

func TestStoreSameDayReplaces(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "gradelog/sameday",
		DbSchema: Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx := context.Background()
	morning := time.Date(2024, 7, 1, 9, 0, 0, 0, timezone.Location)
	evening := morning.Add(time.Hour * 8)

	report := campusnet.GradeReport{
		Semester: "sem-1",
		Modules:  []campusnet.Module{{Name: "Mathematik I", GradeValue: "1,7"}},
	}
	require.NoError(t, store.Push(ctx, report, morning))

	report.Modules[0].GradeValue = "1,3"
	require.NoError(t, store.Push(ctx, report, evening))

	series, err := store.Pull(ctx, "sem-1")
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Len(t, series[0].Snapshots, 1)
	require.Equal(t, "1,3", series[0].Snapshots[0].Grade)
}
