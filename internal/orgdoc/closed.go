package orgdoc

import (
	"regexp"
	"time"

	"github.com/niklasfasching/go-org/org"
)

// Inactive timestamps ([2022-01-30 Sun]) are plain text to go-org, so the
// CLOSED planning line is matched on the raw heading body.
var closedRe = regexp.MustCompile(`CLOSED:\s*\[(\d{4}-\d{2}-\d{2})`)

// ClosedAt extracts the date of a heading's CLOSED timestamp, if any.
func ClosedAt(h org.Headline) (time.Time, bool) {
	for _, node := range h.Children {
		if _, isHeadline := node.(org.Headline); isHeadline {
			break
		}
		m := closedRe.FindStringSubmatch(node.String())
		if m == nil {
			continue
		}
		t, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}
