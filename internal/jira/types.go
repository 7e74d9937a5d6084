package jira

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Project represents a Jira project lookup response.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// User represents a Jira user record.
type User struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
	Active       bool   `json:"active"`
}

// UserResult carries the outcome of a user lookup alongside the raw record.
type UserResult struct {
	Found bool
	User  User
}

// IssueSummary is the flat record extracted from an issue detail response.
type IssueSummary struct {
	ReporterAccountID    string `json:"reporter_account_id"`
	ReporterEmailAddress string `json:"reporter_email_address"`
	IssueStatusID        string `json:"issue_status_id"`
	IssueStatusName      string `json:"issue_status_name"`
	ChangeStartDatetime  string `json:"change_start_datetime"`
	AssigneeID           string `json:"assignee_id"`
	AssigneeEmailAddress string `json:"assignee_email_address"`
}

// IssueDetail bundles the parsed issue document with the extracted summary
// and, when requested, the consolidated form report.
type IssueDetail struct {
	Summary    IssueSummary
	Issue      map[string]any
	FormReport []QuestionResponse
}

// issueDocument mirrors the fields IssueDetail extracts from the raw issue.
type issueDocument struct {
	Key    string `json:"key"`
	Fields struct {
		Reporter *User `json:"reporter"`
		Assignee *User `json:"assignee"`
		Status   struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"status"`
		ChangeStartDatetime string `json:"customfield_14069"`
	} `json:"fields"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// SearchResult represents the top-level structure from the Jira search API.
type SearchResult struct {
	StartAt    int              `json:"startAt"`
	MaxResults int              `json:"maxResults"`
	Total      int              `json:"total"`
	Issues     []map[string]any `json:"issues"`
}

// CreatedIssue is the response to an issue create request.
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Changelog represents an issue changelog page.
type Changelog struct {
	StartAt    int              `json:"startAt"`
	MaxResults int              `json:"maxResults"`
	Total      int              `json:"total"`
	Values     []map[string]any `json:"values"`
}

// RoleActor is one member of a project role.
type RoleActor struct {
	ID          int    `json:"id"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	ActorUser   struct {
		AccountID string `json:"accountId"`
	} `json:"actorUser"`

	// Email is filled in by RoleUsers via a per-actor user lookup; it is
	// not part of the role payload itself.
	Email string `json:"-"`
}

// Role represents a project role with its member list.
type Role struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Actors []RoleActor `json:"actors"`
}

// FormChoice is one selectable option of a choice question.
type FormChoice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FormQuestion is one entry of a form design section.
type FormQuestion struct {
	JiraField   string       `json:"jiraField"`
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	QuestionKey string       `json:"questionKey"`
	Choices     []FormChoice `json:"choices"`
}

// FormAnswer is one entry of a form state section, keyed by the same
// question ID as its design counterpart.
type FormAnswer struct {
	Text    string   `json:"text"`
	Users   []string `json:"users"`
	Label   string   `json:"label"`
	Choices []string `json:"choices"`
	Date    string   `json:"date"`
	Time    string   `json:"time"`
}

// formDocument is the proforma issue property holding a form's design and
// state sections.
type formDocument struct {
	Design struct {
		Questions orderedQuestions `json:"questions"`
	} `json:"design"`
	State struct {
		Answers orderedAnswers `json:"answers"`
	} `json:"state"`
}

// orderedQuestions decodes a JSON object of questions while preserving the
// document order of its keys, which encoding/json maps would discard.
type orderedQuestions struct {
	IDs  []string
	ByID map[string]FormQuestion
}

func (q *orderedQuestions) UnmarshalJSON(data []byte) error {
	q.ByID = make(map[string]FormQuestion)
	return decodeOrderedObject(data, func(id string, raw json.RawMessage) error {
		var question FormQuestion
		if err := json.Unmarshal(raw, &question); err != nil {
			return err
		}
		q.IDs = append(q.IDs, id)
		q.ByID[id] = question
		return nil
	})
}

// orderedAnswers decodes a JSON object of answers while preserving the
// document order of its keys.
type orderedAnswers struct {
	IDs  []string
	ByID map[string]FormAnswer
}

func (a *orderedAnswers) UnmarshalJSON(data []byte) error {
	a.ByID = make(map[string]FormAnswer)
	return decodeOrderedObject(data, func(id string, raw json.RawMessage) error {
		var answer FormAnswer
		if err := json.Unmarshal(raw, &answer); err != nil {
			return err
		}
		a.IDs = append(a.IDs, id)
		a.ByID[id] = answer
		return nil
	})
}

// decodeOrderedObject walks a JSON object token by token, invoking fn for
// each key/value pair in document order.
func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing brace
	return err
}
