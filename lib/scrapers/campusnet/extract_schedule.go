package campusnet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"campusnet-client/lib/htmlutil"
	"campusnet-client/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

var captionRangeRegex = regexp.MustCompile(`vom\s+(\d{1,2})\.(\d{1,2})\.\s+bis\s+(\d{1,2})\.(\d{1,2})\.`)

// weekday abbreviations in portal column order, Montag first
var weekdayOrder = []string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}

var headerDateRegex = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.`)

// ExtractScheduleWeek parses the weekly timetable. the caption
// "... vom dd.mm. bis dd.mm." carries no year, so the current
// calendar year is assumed. this silently mis-dates a week spanning
// New Year, mirroring the portal client this replaces.
func ExtractScheduleWeek(html string) (ScheduleWeek, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return ScheduleWeek{}, err
	}

	caption := htmlutil.CleanText(doc.Find("caption").First().Text())
	groups := captionRangeRegex.FindStringSubmatch(caption)
	if len(groups) < 5 {
		return ScheduleWeek{}, fmt.Errorf("schedule caption %q has no date range", caption)
	}

	year := timezone.Now().Year()
	startDay, _ := strconv.Atoi(groups[1])
	startMonth, _ := strconv.Atoi(groups[2])
	weekStart := time.Date(year, time.Month(startMonth), startDay, 0, 0, 0, 0, timezone.Location)

	dates := extractHeaderDates(doc, year)
	if len(dates) == 0 {
		// header gave us nothing, assign the range sequentially
		// in Montag..Sonntag order
		dates = map[string]time.Time{}
		for i, abbr := range weekdayOrder {
			dates[abbr] = weekStart.AddDate(0, 0, i)
		}
	}

	week := ScheduleWeek{WeekStart: weekStart}
	dayIndex := map[int64]int{}
	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		week.Days = append(week.Days, Day{Date: date})
		dayIndex[date.Unix()] = i
	}

	doc.Find("td.appointment").Each(func(_ int, cell *goquery.Selection) {
		// the weekday comes from the cell's own abbr attribute,
		// not from its column position
		abbr := strings.Fields(cell.AttrOr("abbr", ""))
		if len(abbr) == 0 {
			return
		}
		date, ok := dates[abbr[0]]
		if !ok {
			return
		}
		idx, ok := dayIndex[date.Unix()]
		if !ok {
			return
		}

		event, ok := extractAppointment(cell)
		if !ok {
			return
		}
		week.Days[idx].Events = append(week.Days[idx].Events, event)
	})

	return week, nil
}

// header cells look like "Mo 01.07."; maps abbreviation to date
func extractHeaderDates(doc *goquery.Document, year int) map[string]time.Time {
	dates := map[string]time.Time{}
	doc.Find("th.weekday").Each(func(_ int, th *goquery.Selection) {
		fields := strings.Fields(htmlutil.CleanText(th.Text()))
		if len(fields) < 2 {
			return
		}
		abbr := fields[0]
		known := false
		for _, w := range weekdayOrder {
			if w == abbr {
				known = true
				break
			}
		}
		if !known {
			return
		}
		groups := headerDateRegex.FindStringSubmatch(fields[1])
		if len(groups) < 3 {
			return
		}
		day, _ := strconv.Atoi(groups[1])
		month, _ := strconv.Atoi(groups[2])
		dates[abbr] = time.Date(year, time.Month(month), day, 0, 0, 0, 0, timezone.Location)
	})
	return dates
}

func extractAppointment(cell *goquery.Selection) (Event, bool) {
	event := Event{
		DetailUrl: cell.Find("a").First().AttrOr("href", ""),
		Lecturer:  htmlutil.CleanText(cell.Find("span.person").First().Text()),
	}

	// title is the cell text with the time/room and lecturer
	// markup stripped out
	titleSel := cell.Clone()
	titleSel.Find("span.timePeriod, span.person").Remove()
	event.Title = htmlutil.CleanText(titleSel.Text())

	timeRoom := htmlutil.CleanText(cell.Find("span.timePeriod").First().Text())
	fields := strings.Fields(timeRoom)
	// token 0 is the start, token 1 a separator glyph, token 2 the
	// end, the rest is the room
	if len(fields) >= 3 {
		event.StartTime = fields[0]
		event.EndTime = fields[2]
		event.Room = SplitRooms(strings.Join(fields[3:], " "))
	}

	if event.Title == "" && event.StartTime == "" {
		return Event{}, false
	}
	return event, true
}

var roomCodeRegex = regexp.MustCompile(`[A-ZÄÖÜ]+[-.]\d+[a-z]?`)

// SplitRooms inserts a ", " separator between concatenated room codes,
// e.g. "HOR-135HOR-136" becomes "HOR-135, HOR-136". anything that is
// not a pure run of codes passes through unchanged.
func SplitRooms(rooms string) string {
	matches := roomCodeRegex.FindAllString(rooms, -1)
	if len(matches) < 2 {
		return rooms
	}
	if strings.Join(matches, "") != strings.ReplaceAll(rooms, " ", "") {
		return rooms
	}
	return strings.Join(matches, ", ")
}
