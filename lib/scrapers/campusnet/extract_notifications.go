package campusnet

import (
	"fmt"
	"strings"

	"campusnet-client/lib/htmlutil"
	"campusnet-client/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var (
	scheduleChangeLabels = []string{"stundenplanänderung", "geändert", "verschoben", "entfällt"}
	scheduleSetLabels    = []string{"stundenplangesetzt", "gesetzt"}
)

func classifyNotification(subject string) NotificationType {
	switch {
	case textutil.MatchLabel(subject, scheduleChangeLabels):
		return NotificationScheduleChange
	case textutil.MatchLabel(subject, scheduleSetLabels):
		return NotificationScheduleSet
	}
	return NotificationGeneralMessage
}

// ExtractNotifications parses the message inbox on the start page.
// each row is date, time, sender and a subject anchor; unread rows
// carry the "unread" marker class.
func ExtractNotifications(html string) []NotificationItem {
	doc, err := parseDocument(html)
	if err != nil {
		return nil
	}

	var items []NotificationItem
	doc.Find("table.messages tr, table.rw-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		item := NotificationItem{
			Date:   htmlutil.CleanText(cells.Eq(0).Text()),
			Time:   htmlutil.CleanText(cells.Eq(1).Text()),
			Sender: htmlutil.CleanText(cells.Eq(2).Text()),
		}

		subjectCell := cells.Eq(3)
		anchor := subjectCell.Find("a").First()
		item.Subject = htmlutil.CleanText(subjectCell.Text())
		item.DetailUrl = anchor.AttrOr("href", "")
		item.Type = classifyNotification(item.Subject)
		item.IsUnread = row.HasClass("unread") || subjectCell.Find("b").Length() > 0

		if item.Subject == "" {
			return
		}

		item.Id = notificationId(item)
		items = append(items, item)
	})

	return items
}

// the portal exposes no stable message id, so one is derived from the
// detail link when present, otherwise from the row contents
func notificationId(item NotificationItem) string {
	if idx := strings.Index(item.DetailUrl, "ARGUMENTS="); idx >= 0 {
		return item.DetailUrl[idx+len("ARGUMENTS="):]
	}
	return fmt.Sprintf("%s|%s|%s", item.Date, item.Time, item.Subject)
}
