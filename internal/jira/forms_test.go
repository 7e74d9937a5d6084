package jira

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formProperties wraps a raw form document under a proforma property key.
func formProperties(t *testing.T, form string) map[string]json.RawMessage {
	t.Helper()
	return map[string]json.RawMessage{
		"proforma.forms.i12ab": json.RawMessage(form),
	}
}

func TestConsolidateForm(t *testing.T) {
	t.Parallel()

	t.Run("date time questions compose date H time", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {
				"1": {"type": "dt", "label": "Change window"}
			}},
			"state": {"answers": {
				"1": {"date": "2024-06-01", "time": "22:30"}
			}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 1)

		require.NotNil(t, rows[0].ConsolidatedValue)
		assert.Equal(t, "2024-06-01H22:30", *rows[0].ConsolidatedValue)
		assert.Equal(t, "Date/Time", rows[0].TypeName)
	})

	t.Run("choice questions emit selected options only", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {
				"2": {"type": "cm", "label": "Environments", "choices": [
					{"id": "1", "label": "dev"},
					{"id": "2", "label": "staging"},
					{"id": "3", "label": "production"}
				]}
			}},
			"state": {"answers": {
				"2": {"choices": ["1", "3"]}
			}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.NotNil(t, rows[0].ConsolidatedValue)

		var selected []SelectedChoice
		require.NoError(t, json.Unmarshal([]byte(*rows[0].ConsolidatedValue), &selected))
		assert.Equal(t, []SelectedChoice{
			{ChoiceID: "1", Value: "dev"},
			{ChoiceID: "3", Value: "production"},
		}, selected)
	})

	t.Run("choice question without options consolidates to null", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {
				"3": {"type": "cs", "label": "Orphan"}
			}},
			"state": {"answers": {
				"3": {"choices": ["1"]}
			}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].ConsolidatedValue)
	})

	t.Run("choice question with no selection emits empty list", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {
				"4": {"type": "cd", "choices": [{"id": "1", "label": "dev"}]}
			}},
			"state": {"answers": {
				"4": {}
			}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.NotNil(t, rows[0].ConsolidatedValue)
		assert.Equal(t, "[]", *rows[0].ConsolidatedValue)
	})

	t.Run("text questions stringify the text field", func(t *testing.T) {
		t.Parallel()

		for _, typeCode := range []string{"ts", "pg", "rt", "tl", "at"} {
			rows, err := ConsolidateForm(formProperties(t, fmt.Sprintf(`{
				"design": {"questions": {"5": {"type": %q}}},
				"state": {"answers": {"5": {"text": "free text"}}}
			}`, typeCode)))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.NotNil(t, rows[0].ConsolidatedValue)
			assert.Equal(t, "free text", *rows[0].ConsolidatedValue, "type %s", typeCode)
		}
	})

	t.Run("user questions stringify the users list", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {"6": {"type": "um"}}},
			"state": {"answers": {"6": {"users": ["abc", "def"]}}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.NotNil(t, rows[0].ConsolidatedValue)
		assert.JSONEq(t, `["abc","def"]`, *rows[0].ConsolidatedValue)
	})

	t.Run("date and time questions use their own field", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {
				"7": {"type": "da"},
				"8": {"type": "ti"}
			}},
			"state": {"answers": {
				"7": {"date": "2024-06-01", "time": "10:00"},
				"8": {"date": "2024-06-01", "time": "10:00"}
			}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2024-06-01", *rows[0].ConsolidatedValue)
		assert.Equal(t, "10:00", *rows[1].ConsolidatedValue)
	})

	t.Run("rows follow the answers document order", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {
				"1": {"type": "ts", "label": "first"},
				"2": {"type": "ts", "label": "second"},
				"3": {"type": "ts", "label": "third"}
			}},
			"state": {"answers": {
				"3": {"text": "c"},
				"1": {"text": "a"},
				"2": {"text": "b"}
			}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"3", "1", "2"}, []string{rows[0].QuestionID, rows[1].QuestionID, rows[2].QuestionID})
	})

	t.Run("answers without a matching question are dropped", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {"1": {"type": "ts"}}},
			"state": {"answers": {
				"1": {"text": "kept"},
				"9": {"text": "dropped"}
			}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "1", rows[0].QuestionID)
	})

	t.Run("question metadata is carried onto the row", func(t *testing.T) {
		t.Parallel()

		rows, err := ConsolidateForm(formProperties(t, `{
			"design": {"questions": {
				"1": {"type": "ts", "label": "Reason", "questionKey": "reason", "jiraField": "customfield_1"}
			}},
			"state": {"answers": {"1": {"text": "because"}}}
		}`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Reason", rows[0].Label)
		assert.Equal(t, "reason", rows[0].QuestionKey)
		assert.Equal(t, "customfield_1", rows[0].JiraField)
		assert.Equal(t, "Text Short", rows[0].TypeName)
	})

	t.Run("missing proforma property is an error", func(t *testing.T) {
		t.Parallel()

		_, err := ConsolidateForm(map[string]json.RawMessage{
			"other.property": json.RawMessage(`{}`),
		})
		assert.Error(t, err)
	})
}
