package campusnet

import (
	"fmt"
	"testing"
	"time"

	"campusnet-client/lib/timezone"

	"github.com/stretchr/testify/require"
)

const scheduleFixture = `
<html><body>
<table class="nb weekTableT">
<caption>Stundenplan vom 01.07. bis 07.07.</caption>
<tr>
  <th class="weekday">Mo 01.07.</th>
  <th class="weekday">Di 02.07.</th>
  <th class="weekday">Mi 03.07.</th>
  <th class="weekday">Do 04.07.</th>
  <th class="weekday">Fr 05.07.</th>
  <th class="weekday">Sa 06.07.</th>
  <th class="weekday">So 07.07.</th>
</tr>
<tr>
  <td class="appointment" abbr="Mo 08:15">
    <a class="link" href="/scripts/mgrqispi.dll?APPNAME=CampusNet&amp;PRGNAME=COURSEDETAILS&amp;ARGUMENTS=-N123456789012345,-N000028,-N376333755785484">Mathe I</a><br />
    <span class="timePeriod">08:15 - 09:45 HOR-120</span>
    <span class="person">Weber</span>
  </td>
  <td class="appointment" abbr="Mi 10:00">
    Programmieren<br />
    <span class="timePeriod">10:00 - 11:30 HOR-135HOR-136</span>
  </td>
</tr>
</table>
</body></html>`

func TestExtractScheduleWeek(t *testing.T) {
	week, err := ExtractScheduleWeek(scheduleFixture)
	require.NoError(t, err)

	year := timezone.Now().Year()
	require.Equal(t, time.Date(year, 7, 1, 0, 0, 0, 0, timezone.Location), week.WeekStart)
	require.Len(t, week.Days, 7)

	monday := week.Days[0]
	require.Equal(t, time.Date(year, 7, 1, 0, 0, 0, 0, timezone.Location), monday.Date)
	require.Len(t, monday.Events, 1)

	event := monday.Events[0]
	require.Equal(t, "Mathe I", event.Title)
	require.Equal(t, "08:15", event.StartTime)
	require.Equal(t, "09:45", event.EndTime)
	require.Equal(t, "HOR-120", event.Room)
	require.Equal(t, "Weber", event.Lecturer)
	require.Contains(t, event.DetailUrl, "COURSEDETAILS")

	// the cell's abbr attribute, not its column, decides the weekday
	wednesday := week.Days[2]
	require.Len(t, wednesday.Events, 1)
	require.Equal(t, "Programmieren", wednesday.Events[0].Title)
	require.Equal(t, "HOR-135, HOR-136", wednesday.Events[0].Room)

	for _, i := range []int{1, 3, 4, 5, 6} {
		require.Empty(t, week.Days[i].Events)
	}
}

func TestExtractScheduleWeekHeaderFallback(t *testing.T) {
	// no parseable header cells, the extractor assigns the range
	// sequentially Montag..Sonntag
	fixture := `
<table class="nb weekTableT">
<caption>Stundenplan vom 01.07. bis 07.07.</caption>
<tr>
  <td class="appointment" abbr="Di 10:00">
    Analysis<br />
    <span class="timePeriod">10:00 - 11:30 ESB-214</span>
  </td>
</tr>
</table>`

	week, err := ExtractScheduleWeek(fixture)
	require.NoError(t, err)

	year := timezone.Now().Year()
	tuesday := week.Days[1]
	require.Equal(t, time.Date(year, 7, 2, 0, 0, 0, 0, timezone.Location), tuesday.Date)
	require.Len(t, tuesday.Events, 1)
	require.Equal(t, "Analysis", tuesday.Events[0].Title)
}

func TestExtractScheduleWeekBadCaption(t *testing.T) {
	_, err := ExtractScheduleWeek(`<table><caption>Wartungsarbeiten</caption></table>`)
	require.Error(t, err)
}

func TestSplitRooms(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"HOR-135HOR-136", "HOR-135, HOR-136"},
		{"HOR-120", "HOR-120"},
		{"A.101B.202", "A.101, B.202"},
		{"Online-Veranstaltung", "Online-Veranstaltung"},
		{"", ""},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.in), func(t *testing.T) {
			require.Equal(t, tc.expected, SplitRooms(tc.in))
		})
	}
}
