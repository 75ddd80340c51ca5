package orgdoc

import "strings"

// InReviewKeyword is the one workflow keyword that stays visible outside
// release mode, so drafts under review can be previewed locally.
const InReviewKeyword = "PROGRESS"

// Keywords partitions the workflow keywords into the not-yet-done set and
// the done set. Headings carrying a not-done keyword are excluded from
// release builds.
type Keywords struct {
	NotDone []string
	Done    []string
}

// DefaultKeywords returns the workflow keyword sets used when the
// document does not declare its own #+todo line.
func DefaultKeywords() Keywords {
	return Keywords{
		NotDone: []string{"TODO", "PROGRESS", "WAITING", "MAYBE", "CANCELLED"},
		Done:    []string{"DONE", "READ"},
	}
}

// ParseKeywords parses an org "#+todo:" value of the form
// "TODO PROGRESS | DONE" into keyword sets. An empty value yields the
// defaults.
func ParseKeywords(value string) Keywords {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultKeywords()
	}
	notDone, done := value, ""
	if i := strings.Index(value, "|"); i >= 0 {
		notDone, done = value[:i], value[i+1:]
	}
	return Keywords{
		NotDone: strings.Fields(notDone),
		Done:    strings.Fields(done),
	}
}

// IsNotDone reports whether status is one of the not-done keywords.
func (k Keywords) IsNotDone(status string) bool {
	for _, kw := range k.NotDone {
		if kw == status {
			return true
		}
	}
	return false
}

// orgSetting renders the sets in go-org's #+TODO syntax.
func (k Keywords) orgSetting() string {
	return strings.Join(k.NotDone, " ") + " | " + strings.Join(k.Done, " ")
}
