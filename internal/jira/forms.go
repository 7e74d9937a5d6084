package jira

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// proformaKeyPrefix is the issue property prefix under which the proforma
// form document lives; the suffix after "i" is a per-form identifier.
const proformaKeyPrefix = "proforma.forms.i"

// SelectedChoice is one chosen option of a choice question, as emitted in
// the consolidated value.
type SelectedChoice struct {
	ChoiceID string `json:"choice_id"`
	Value    string `json:"value"`
}

// QuestionResponse is one consolidated row of a form report: a question
// joined with its answer plus the per-type consolidated value.
type QuestionResponse struct {
	QuestionID  string     `json:"question_id"`
	Label       string     `json:"label"`
	QuestionKey string     `json:"question_key"`
	JiraField   string     `json:"jira_field"`
	Type        string     `json:"type"`
	TypeName    string     `json:"type_name"`
	Answer      FormAnswer `json:"answer"`

	// Options are the question's available choices; nil when the question
	// defines none.
	Options []FormChoice `json:"options,omitempty"`

	// ConsolidatedValue is nil only for choice questions without options.
	ConsolidatedValue *string `json:"value_consolidated"`
}

// ConsolidateForm locates the proforma form among the issue properties and
// joins its answers with the question definitions into tabular rows. Rows
// follow the answers' document order; answers without a matching question
// are dropped, as are questions that were never answered.
func ConsolidateForm(properties map[string]json.RawMessage) ([]QuestionResponse, error) {
	raw, err := findFormProperty(properties)
	if err != nil {
		return nil, err
	}

	var form formDocument
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, fmt.Errorf("parse form document: %w", err)
	}

	rows := make([]QuestionResponse, 0, len(form.State.Answers.IDs))
	for _, id := range form.State.Answers.IDs {
		question, ok := form.Design.Questions.ByID[id]
		if !ok {
			continue
		}
		answer := form.State.Answers.ByID[id]

		row := QuestionResponse{
			QuestionID:  id,
			Label:       question.Label,
			QuestionKey: question.QuestionKey,
			JiraField:   question.JiraField,
			Type:        question.Type,
			TypeName:    QuestionTypeName(question.Type),
			Answer:      answer,
			Options:     question.Choices,
		}
		value, err := consolidateValue(question, answer)
		if err != nil {
			return nil, fmt.Errorf("consolidate question %s: %w", id, err)
		}
		row.ConsolidatedValue = value
		rows = append(rows, row)
	}
	return rows, nil
}

// findFormProperty returns the first proforma form document among the issue
// properties, in sorted key order for determinism.
func findFormProperty(properties map[string]json.RawMessage) (json.RawMessage, error) {
	keys := make([]string, 0, len(properties))
	for k := range properties {
		if strings.HasPrefix(k, proformaKeyPrefix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("issue has no %s* property", proformaKeyPrefix)
	}
	sort.Strings(keys)
	return properties[keys[0]], nil
}

// consolidateValue computes the single reporting value for one joined row.
// Date/time questions compose "{date}H{time}", choice questions emit a JSON
// list of the selected options (nil when the question has no options), and
// every other type stringifies its designated source field.
func consolidateValue(question FormQuestion, answer FormAnswer) (*string, error) {
	switch questionTypeSources[question.Type] {
	case sourceDateTime:
		value := fmt.Sprintf("%sH%s", answer.Date, answer.Time)
		return &value, nil

	case sourceChoices:
		if question.Choices == nil {
			return nil, nil
		}
		selected := make(map[string]bool, len(answer.Choices))
		for _, id := range answer.Choices {
			selected[id] = true
		}
		chosen := make([]SelectedChoice, 0, len(answer.Choices))
		for _, option := range question.Choices {
			if selected[option.ID] {
				chosen = append(chosen, SelectedChoice{ChoiceID: option.ID, Value: option.Label})
			}
		}
		data, err := json.Marshal(chosen)
		if err != nil {
			return nil, err
		}
		value := string(data)
		return &value, nil

	case sourceUsers:
		data, err := json.Marshal(answer.Users)
		if err != nil {
			return nil, err
		}
		value := string(data)
		return &value, nil

	case sourceDate:
		return &answer.Date, nil

	case sourceTime:
		return &answer.Time, nil

	default:
		return &answer.Text, nil
	}
}
