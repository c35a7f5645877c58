package campusnet

import (
	"testing"
	"time"

	"campusnet-client/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("/scripts/mgrqispi.dll?APPNAME=CampusNet&PRGNAME=STARTPAGE_DISPATCH&ARGUMENTS=-N123456789012345,-N000019,-N000000000000000")
	require.NoError(t, err)
	require.Equal(t, "123456789012345", token)

	// not exactly 15 digits
	_, err = ExtractToken("/scripts/mgrqispi.dll?ARGUMENTS=-N12345,-N000019")
	require.ErrorIs(t, err, ErrNoToken)

	// no ARGUMENTS at all
	_, err = ExtractToken("/scripts/mgrqispi.dll?APPNAME=CampusNet")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestWithToken(t *testing.T) {
	base := "/scripts/mgrqispi.dll?APPNAME=CampusNet&PRGNAME=SCHEDULER&ARGUMENTS=-N000000000000000,-N000028,-A"
	got := WithToken(base, "123456789012345")
	require.Equal(
		t,
		"/scripts/mgrqispi.dll?APPNAME=CampusNet&PRGNAME=SCHEDULER&ARGUMENTS=-N123456789012345,-N000028,-A",
		got,
	)

	// no token slot passes through unchanged
	require.Equal(t, "/foo", WithToken("/foo", "123456789012345"))
}

func TestWithDate(t *testing.T) {
	base := "/scripts/mgrqispi.dll?APPNAME=CampusNet&PRGNAME=SCHEDULER&ARGUMENTS=-N123456789012345,-N000028,-A,-N1"
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, timezone.Location)
	got := WithDate(base, date)
	require.Equal(
		t,
		"/scripts/mgrqispi.dll?APPNAME=CampusNet&PRGNAME=SCHEDULER&ARGUMENTS=-N123456789012345,-N000028,-A01.07.2024,-N1",
		got,
	)

	// no date marker passes through unchanged
	noMarker := "/scripts/mgrqispi.dll?ARGUMENTS=-N123456789012345"
	require.Equal(t, noMarker, WithDate(noMarker, date))
}
