package campusnet

import (
	"strings"

	"campusnet-client/lib/htmlutil"
	"campusnet-client/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const gradeUnset = "noch nicht gesetzt"

var (
	gpaLabels           = []string{"gesamt-gpa", "gesamtgpa"}
	creditsGainedLabels = []string{"creditserworben"}
	creditsTotalLabels  = []string{"creditsgesamt"}
)

// ExtractGradeReport parses the exam results table for one semester.
// rows with missing cells degrade to empty fields.
func ExtractGradeReport(html, semester string) GradeReport {
	report := GradeReport{Semester: semester}

	doc, err := parseDocument(html)
	if err != nil {
		return report
	}

	doc.Find("table.nb tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		module := Module{
			Id:      htmlutil.CleanText(cells.Eq(0).Text()),
			Name:    htmlutil.CleanText(cells.Eq(1).Text()),
			Credits: htmlutil.CleanText(cells.Eq(2).Text()),
		}
		if module.Name == "" {
			return
		}

		grade := htmlutil.CleanText(cells.Eq(3).Text())
		if !strings.EqualFold(grade, gradeUnset) {
			module.GradeValue = grade
		}

		state := ""
		if cells.Length() > 4 {
			state = htmlutil.CleanText(cells.Eq(4).Text())
		}
		module.State = parseModuleState(state)

		report.Modules = append(report.Modules, module)
	})

	doc.Find("tfoot tr, tr.tbsubhead").Each(func(_ int, row *goquery.Selection) {
		label := row.Find("th").First().Text()
		value := htmlutil.CleanText(row.Find("td").First().Text())
		if value == "" {
			return
		}
		switch {
		case textutil.MatchLabel(label, gpaLabels):
			report.GpaTotal = value
		case textutil.MatchLabel(label, creditsGainedLabels):
			report.CreditsGained = value
		case textutil.MatchLabel(label, creditsTotalLabels):
			report.CreditsTotal = value
		}
	})

	return report
}

func parseModuleState(state string) ModuleState {
	normalized := textutil.NormalizeLabel(state)
	switch {
	case strings.Contains(normalized, "nichtbestanden"):
		return ModuleFailed
	case strings.Contains(normalized, "bestanden"):
		return ModulePassed
	}
	return ModulePending
}
