package campusnet

import (
	"fmt"
	"regexp"
	"strings"

	"campusnet-client/lib/htmlutil"
	"campusnet-client/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// extraction is a set of pure html -> struct functions. a missing
// element degrades to an empty field, it never aborts the page.

const scriptPath = "/scripts/mgrqispi.dll"

// navigation labels that identify the home page, normalized
var homeNavLabels = []string{
	"stundenplan",
	"prüfungsergebnisse",
	"abmelden",
}

var (
	scheduleLabels = []string{"stundenplan", "diesewoche"}
	logoutLabels   = []string{"abmelden", "logout"}
	messageLabels  = []string{"nachrichten", "eingegangenenachrichten"}
)

func parseDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// IsHomePage reports whether the page carries any of the fixed
// navigation labels only the logged-in start page has.
func IsHomePage(doc *goquery.Document) bool {
	found := false
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if textutil.MatchLabel(a.Text(), homeNavLabels) {
			found = true
			return false
		}
		return true
	})
	return found
}

// IsRedirectPage reports whether the page is one of the intermediate
// hops of the post-login chain, marked by a refresh directive.
func IsRedirectPage(doc *goquery.Document) bool {
	marker := false
	doc.Find("meta").EachWithBreak(func(_ int, meta *goquery.Selection) bool {
		if strings.EqualFold(meta.AttrOr("http-equiv", ""), "refresh") {
			marker = true
			return false
		}
		return true
	})
	return marker
}

var scriptLocationRegex = regexp.MustCompile(`location(?:\.href)?\s*=\s*['"]([^'"]+)['"]`)

// NextRedirectUrl digs the next hop out of an intermediate page,
// preferring the inline script assignment over the fallback anchor.
func NextRedirectUrl(doc *goquery.Document) (string, bool) {
	next := ""
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		groups := scriptLocationRegex.FindStringSubmatch(script.Text())
		if len(groups) < 2 {
			return true
		}
		next = groups[1]
		return false
	})
	if next != "" {
		return next, true
	}

	anchors := htmlutil.GetAnchors(doc.Find("a"))
	for _, a := range anchors {
		if a.Href != "" {
			return a.Href, true
		}
	}
	return "", false
}

var sessionExpiredMarkers = []string{
	"zugangverweigert",
	"sitzungistabgelaufen",
	"bittemeldensiesicherneutan",
}

// IsSessionExpiredPage recognizes the portal's "access denied, please
// log in again" page that replaces any content once the token dies.
func IsSessionExpiredPage(html string) bool {
	return textutil.MatchLabel(html, sessionExpiredMarkers)
}

// BuildGradesEndpoint derives the grade report URL straight from the
// token. the portal never links it as a plain anchor on the home page.
func BuildGradesEndpoint(token string) string {
	return fmt.Sprintf(
		"%s?APPNAME=CampusNet&PRGNAME=COURSERESULTS&ARGUMENTS=-N%s,-N000307,",
		scriptPath, token,
	)
}

// BuildStartpageEndpoint points back at the message inbox shown on
// the start page.
func BuildStartpageEndpoint(token string) string {
	return fmt.Sprintf(
		"%s?APPNAME=CampusNet&PRGNAME=MLSSTART&ARGUMENTS=-N%s,-N000019,",
		scriptPath, token,
	)
}

// ExtractHomeEndpoints recovers the navigation endpoints from the home
// page anchors. grades and notifications are built from the token.
func ExtractHomeEndpoints(html, token string) map[string]string {
	endpoints := map[string]string{
		EndpointGrades:        BuildGradesEndpoint(token),
		EndpointNotifications: BuildStartpageEndpoint(token),
	}

	doc, err := parseDocument(html)
	if err != nil {
		return endpoints
	}

	for _, a := range htmlutil.GetAnchors(doc.Find("a")) {
		if a.Href == "" {
			continue
		}
		switch {
		case textutil.MatchLabel(a.Name, scheduleLabels):
			if _, ok := endpoints[EndpointSchedule]; !ok {
				endpoints[EndpointSchedule] = a.Href
			}
		case textutil.MatchLabel(a.Name, logoutLabels):
			if _, ok := endpoints[EndpointLogout]; !ok {
				endpoints[EndpointLogout] = a.Href
			}
		case textutil.MatchLabel(a.Name, messageLabels):
			endpoints[EndpointNotifications] = a.Href
		}
	}

	return endpoints
}

// the portal occasionally serves a semester dropdown with no options.
// a static default keeps the rest of the flow alive, losing nothing
// but the display names.
func DefaultSemesters() []Semester {
	return []Semester{
		{Value: "000000015158000", DisplayName: "SoSe 2024", IsSelected: true},
		{Value: "000000015141000", DisplayName: "WiSe 2023/24"},
	}
}

// ExtractSemesters reads the semester <select>. an empty result falls
// back to DefaultSemesters instead of propagating an error.
func ExtractSemesters(html string) []Semester {
	doc, err := parseDocument(html)
	if err != nil {
		return DefaultSemesters()
	}

	var semesters []Semester
	doc.Find("select#semester option, select[name=semester] option").Each(func(_ int, opt *goquery.Selection) {
		value := strings.TrimSpace(opt.AttrOr("value", ""))
		name := htmlutil.CleanText(opt.Text())
		if value == "" || name == "" {
			return
		}
		_, selected := opt.Attr("selected")
		semesters = append(semesters, Semester{
			Value:       value,
			DisplayName: name,
			IsSelected:  selected,
		})
	})

	if len(semesters) == 0 {
		return DefaultSemesters()
	}
	return semesters
}

type EventDetail struct {
	FullTitle  string
	CourseCode string
	Lecturer   string
}

var courseCodeRegex = regexp.MustCompile(`^[A-Z]{1,3}\d[A-Z0-9]*$`)

var lecturerLabels = []string{"lehrende", "dozent"}

// ExtractEventDetail parses a single-event detail page. absent nodes
// yield empty fields.
func ExtractEventDetail(html string) EventDetail {
	doc, err := parseDocument(html)
	if err != nil {
		return EventDetail{}
	}

	detail := EventDetail{}

	title := htmlutil.CleanText(doc.Find("h1").First().Text())
	if title == "" {
		title = htmlutil.CleanText(doc.Find("caption").First().Text())
	}
	detail.FullTitle = title

	if fields := strings.Fields(title); len(fields) > 1 && courseCodeRegex.MatchString(fields[0]) {
		detail.CourseCode = fields[0]
		detail.FullTitle = htmlutil.CleanText(strings.TrimPrefix(title, fields[0]))
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		label := row.Find("th").First().Text()
		if textutil.MatchLabel(label, lecturerLabels) && detail.Lecturer == "" {
			detail.Lecturer = htmlutil.CleanText(row.Find("td").First().Text())
		}
	})

	return detail
}
