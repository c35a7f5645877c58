package cachestore

import (
	"context"
	"testing"
	"time"

	"campusnet-client/lib/testutil"
	"campusnet-client/lib/timezone"

	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Label  string
	Values []int
}

func TestRoundTrip(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:   "cachestore/roundtrip",
		Badger: true,
	})
	defer cleanup()

	store := NewStore(setup.Badger, Options{})
	ctx := context.Background()

	in := snapshot{Label: "kw27", Values: []int{1, 2, 3}}
	require.NoError(t, store.Set(ctx, KindSchedule, "2024-07-01", in))

	var out snapshot
	ok, err := store.Get(ctx, KindSchedule, "2024-07-01", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)

	ok, err = store.Get(ctx, KindSchedule, "2024-07-08", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTTLBoundary(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:   "cachestore/ttl",
		Badger: true,
	})
	defer cleanup()

	writtenAt := timezone.Now()
	now := writtenAt
	store := NewStore(setup.Badger, Options{
		Now: func() time.Time { return now },
	})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KindGrades, "sem-1", snapshot{Label: "v1"}))

	var out snapshot
	now = writtenAt.Add(DefaultTTL - time.Second)
	ok, err := store.Get(ctx, KindGrades, "sem-1", &out)
	require.NoError(t, err)
	require.True(t, ok, "entry should still be live one second before the ttl")

	now = writtenAt.Add(DefaultTTL + time.Second)
	ok, err = store.Get(ctx, KindGrades, "sem-1", &out)
	require.NoError(t, err)
	require.False(t, ok, "entry should be absent one second past the ttl")

	// the expired read deletes the entry, so rewinding the clock
	// must not resurrect it
	now = writtenAt
	ok, err = store.Get(ctx, KindGrades, "sem-1", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPerKindTTL(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:   "cachestore/perkind",
		Badger: true,
	})
	defer cleanup()

	writtenAt := timezone.Now()
	now := writtenAt
	store := NewStore(setup.Badger, Options{
		TTL: map[string]time.Duration{
			KindSemesters: time.Hour,
		},
		Now: func() time.Time { return now },
	})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KindSemesters, "list", snapshot{Label: "sems"}))
	require.NoError(t, store.Set(ctx, KindGrades, "sem-1", snapshot{Label: "grades"}))

	now = writtenAt.Add(time.Hour * 2)

	var out snapshot
	ok, err := store.Get(ctx, KindSemesters, "list", &out)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Get(ctx, KindGrades, "sem-1", &out)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestKeysAndClear(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:   "cachestore/keys",
		Badger: true,
	})
	defer cleanup()

	store := NewStore(setup.Badger, Options{})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KindSchedule, "2024-07-01", snapshot{}))
	require.NoError(t, store.Set(ctx, KindSchedule, "2024-07-08", snapshot{}))
	require.NoError(t, store.Set(ctx, KindGrades, "sem-1", snapshot{}))

	keys, err := store.Keys(ctx, KindSchedule)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"2024-07-01", "2024-07-08"}, keys)

	require.NoError(t, store.Clear(ctx, KindSchedule, "2024-07-01"))
	keys, err = store.Keys(ctx, KindSchedule)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"2024-07-08"}, keys)

	require.NoError(t, store.Clear(ctx, KindSchedule))
	keys, err = store.Keys(ctx, KindSchedule)
	require.NoError(t, err)
	require.Empty(t, keys)

	// other kinds untouched
	keys, err = store.Keys(ctx, KindGrades)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"sem-1"}, keys)
}
