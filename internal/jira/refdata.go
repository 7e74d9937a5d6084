package jira

import "strings"

// LookupKind selects which reference table Lookup consults.
type LookupKind string

const (
	LookupRole       LookupKind = "role"
	LookupStatus     LookupKind = "status"
	LookupTransition LookupKind = "transition"
	LookupComponents LookupKind = "components"
	LookupPriority   LookupKind = "priority"
	LookupIssueType  LookupKind = "issue_type"
)

var roleIDs = map[string]int{
	"approver": 10499,
}

var statusIDs = map[string]int{
	"done":                 10002,
	"in_progress":          10001,
	"to_do":                10000,
	"waiting_for_approval": 13001,
	"ready_to_deploy":      13002,
	"ready_for_work":       13003,
	"fail":                 13004,
	"review_test":          13005,
	"waiting_for_custome":  13006,
	"approved":             13007,
	"rejected":             12001,
}

var transitionIDs = map[string]int{
	"waiting_for_approval": 111,
	"in_automation":        121,
	"ready_to_deploy":      141,
	"ready_for_work":       101,
	"fail":                 131,
	"review_test":          151,
	"waiting_for_customer": 21,
	"done":                 51,
	"approved":             161,
	"rejected":             171,
}

var componentIDs = map[string]int{
	"database": 22503,
}

var priorityIDs = map[string]int{
	"blocker or production down": 10000,
	"highest":                    1,
	"high":                       2,
	"medium":                     3,
	"low":                        4,
	"lowest":                     5,
	"none":                       10100,
}

var issueTypeIDs = map[string]int{
	"subtask":     10003,
	"task":        10001,
	"story":       10004,
	"development": 10005,
	"epic":        10002,
}

// Lookup resolves a human label to its numeric Jira ID in the given table.
// Labels are matched case-insensitively. The second return value is false
// when either the kind or the label is unknown.
func Lookup(kind LookupKind, label string) (int, bool) {
	tables := map[LookupKind]map[string]int{
		LookupRole:       roleIDs,
		LookupStatus:     statusIDs,
		LookupTransition: transitionIDs,
		LookupComponents: componentIDs,
		LookupPriority:   priorityIDs,
		LookupIssueType:  issueTypeIDs,
	}
	table, ok := tables[kind]
	if !ok {
		return 0, false
	}
	id, ok := table[strings.ToLower(label)]
	return id, ok
}

// questionTypeNames maps proforma question type codes to display names.
var questionTypeNames = map[string]string{
	"ts": "Text Short",
	"cs": "Choice Selector",
	"cd": "Choice Dropdown",
	"cl": "Choice List",
	"us": "User",
	"um": "User Multiple",
	"at": "Attachment",
	"dt": "Date/Time",
	"da": "Date",
	"ti": "Time",
	"tl": "Title",
	"cm": "Choice Multiple",
	"pg": "Paragraph",
	"rt": "Rich-Text",
}

// answerSource identifies which answer field carries the value for a
// question type.
type answerSource int

const (
	sourceText answerSource = iota
	sourceUsers
	sourceDate
	sourceTime
	sourceDateTime
	sourceChoices
)

var questionTypeSources = map[string]answerSource{
	"ts": sourceText,
	"cs": sourceChoices,
	"cd": sourceChoices,
	"cl": sourceChoices,
	"cm": sourceChoices,
	"us": sourceUsers,
	"um": sourceUsers,
	"at": sourceText,
	"dt": sourceDateTime,
	"da": sourceDate,
	"ti": sourceTime,
	"tl": sourceText,
	"pg": sourceText,
	"rt": sourceText,
}

// QuestionTypeName returns the display name for a proforma question type
// code, or the empty string for an unknown code.
func QuestionTypeName(code string) string {
	return questionTypeNames[code]
}
