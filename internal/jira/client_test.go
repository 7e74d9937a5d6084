package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves the construction-time endpoints plus any extra
// routes the test registers.
func newTestServer(t *testing.T, extra map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/project/OPS", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Project{ID: "10200", Key: "OPS", Name: "Operations"}) // nolint:errcheck
	})
	mux.HandleFunc("/rest/api/3/myself", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(User{AccountID: "me-1", DisplayName: "Bridge Bot"}) // nolint:errcheck
	})
	for pattern, fn := range extra {
		mux.HandleFunc(pattern, fn)
	}
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), Options{
		BaseURL:     srv.URL + "/rest/",
		Credentials: Credentials{Username: "svc-user", Token: "svc-token"},
		ProjectKey:  "OPS",
		IssueType:   "task",
		Priority:    "medium",
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("caches project and account at construction", func(t *testing.T) {
		srv := newTestServer(t, nil)
		defer srv.Close()

		client := newTestClient(t, srv)

		assert.Equal(t, "10200", client.ProjectID)
		assert.Equal(t, "me-1", client.AccountID)
		assert.Equal(t, "Operations", client.Project.Name)
		assert.Equal(t, "10001", client.DefaultIssueTypeID)
		assert.Equal(t, "3", client.DefaultPriorityID)
	})

	t.Run("unknown default labels fail construction", func(t *testing.T) {
		_, err := NewClient(context.Background(), Options{
			BaseURL:    "https://jira.example.com/rest/",
			ProjectKey: "OPS",
			IssueType:  "mystery",
			Priority:   "medium",
		})
		assert.Error(t, err)
	})

	t.Run("unreachable jira leaves caches empty", func(t *testing.T) {
		client, err := NewClient(context.Background(), Options{
			BaseURL:     "http://127.0.0.1:1/rest/",
			Credentials: Credentials{Username: "u", Token: "t"},
			ProjectKey:  "OPS",
			IssueType:   "task",
			Priority:    "medium",
		})
		require.NoError(t, err)
		assert.Empty(t, client.ProjectID)
		assert.Empty(t, client.AccountID)
	})
}

func TestSentinelCodes(t *testing.T) {
	// A client pointed at a closed port fails every call at transport level.
	client, err := NewClient(context.Background(), Options{
		BaseURL:     "http://127.0.0.1:1/rest/",
		Credentials: Credentials{Username: "u", Token: "t"},
		ProjectKey:  "OPS",
		IssueType:   "task",
		Priority:    "medium",
	})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("each call site owns its code", func(t *testing.T) {
		_, code, err := client.Myself(ctx)
		assert.Error(t, err)
		assert.Equal(t, StatusAuthFailed, code)

		_, code, err = client.ProjectInfo(ctx, "OPS")
		assert.Error(t, err)
		assert.Equal(t, StatusProjectInfoFailed, code)

		_, code, err = client.UserInfo(ctx, "abc")
		assert.Error(t, err)
		assert.Equal(t, StatusUserInfoFailed, code)

		_, code, err = client.UserByEmail(ctx, "jane.doe@example.com")
		assert.Error(t, err)
		assert.Equal(t, StatusUserByEmailFailed, code)

		_, code, err = client.SearchIssues(ctx, "project = OPS")
		assert.Error(t, err)
		assert.Equal(t, StatusSearchFailed, code)

		_, code, err = client.IssueDetail(ctx, "OPS-1", false)
		assert.Error(t, err)
		assert.Equal(t, StatusIssueDetailFailed, code)

		code, err = client.AddComment(ctx, "OPS-1", "hello")
		assert.Error(t, err)
		assert.Equal(t, StatusCommentFailed, code)

		code, err = client.AssignIssue(ctx, "OPS-1", "abc")
		assert.Error(t, err)
		assert.Equal(t, StatusAssignFailed, code)

		_, code, err = client.CreateIssue(ctx, IssueInput{Summary: "s"})
		assert.Error(t, err)
		assert.Equal(t, StatusCreateFailed, code)

		code, err = client.UpdateIssueFields(ctx, "OPS-1", map[string]any{"summary": "x"})
		assert.Error(t, err)
		assert.Equal(t, StatusFieldUpdateFailed, code)

		_, code, err = client.IssueChangelog(ctx, "OPS-1", 10)
		assert.Error(t, err)
		assert.Equal(t, StatusChangelogFailed, code)

		code, err = client.TransitionIssue(ctx, "OPS-1", 51)
		assert.Error(t, err)
		assert.Equal(t, StatusTransitionFailed, code)

		_, code, err = client.RoleUsers(ctx, 10499, "10200")
		assert.Error(t, err)
		assert.Equal(t, StatusRoleUsersFailed, code)

		code, err = client.RoleAddUser(ctx, 10499, "abc", "10200")
		assert.Error(t, err)
		assert.Equal(t, StatusRoleAddFailed, code)

		_, code, err = client.RoleInfo(ctx, 10499, "10200")
		assert.Error(t, err)
		assert.Equal(t, StatusRoleInfoFailed, code)
	})

	t.Run("invalid email short circuits before the network", func(t *testing.T) {
		_, code, err := client.UserByEmail(ctx, "not-an-email")
		assert.Error(t, err)
		assert.Equal(t, StatusInvalidEmail, code)
	})
}

func TestCreateIssue(t *testing.T) {
	t.Run("substitutes cached defaults and builds ADF description", func(t *testing.T) {
		var payload map[string]any
		extra := map[string]http.HandlerFunc{
			"/rest/api/3/issue": func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				user, pass, ok := r.BasicAuth()
				require.True(t, ok)
				assert.Equal(t, "svc-user", user)
				assert.Equal(t, "svc-token", pass)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(CreatedIssue{ID: "1", Key: "OPS-42"}) // nolint:errcheck
			},
		}
		srv := newTestServer(t, extra)
		defer srv.Close()
		client := newTestClient(t, srv)

		created, code, err := client.CreateIssue(context.Background(), IssueInput{
			Summary:     "Rotate database credentials",
			Description: "quarterly rotation",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "OPS-42", created.Key)

		fields := payload["fields"].(map[string]any)
		assert.Equal(t, "Rotate database credentials", fields["summary"])
		assert.Equal(t, map[string]any{"id": "10200"}, fields["project"])
		assert.Equal(t, map[string]any{"id": "10001"}, fields["issuetype"])
		assert.Equal(t, map[string]any{"id": "3"}, fields["priority"])

		description := fields["description"].(map[string]any)
		assert.Equal(t, "doc", description["type"])
		assert.Equal(t, float64(1), description["version"])
		paragraph := description["content"].([]any)[0].(map[string]any)
		text := paragraph["content"].([]any)[0].(map[string]any)
		assert.Equal(t, "quarterly rotation", text["text"])
	})
}

func TestTransitionIssue(t *testing.T) {
	t.Run("posts the transition id as a string", func(t *testing.T) {
		var payload map[string]any
		extra := map[string]http.HandlerFunc{
			"/rest/api/3/issue/OPS-1/transitions": func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				w.WriteHeader(http.StatusNoContent)
			},
		}
		srv := newTestServer(t, extra)
		defer srv.Close()
		client := newTestClient(t, srv)

		code, err := client.TransitionIssue(context.Background(), "OPS-1", 51)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, code)
		assert.Equal(t, map[string]any{"transition": map[string]any{"id": "51"}}, payload)
	})
}

func TestIssueDetail(t *testing.T) {
	issueJSON := `{
		"key": "OPS-7",
		"fields": {
			"reporter": {"accountId": "rep-1", "emailAddress": "rep@example.com"},
			"assignee": {"accountId": "asg-1", "emailAddress": "asg@example.com"},
			"status": {"id": "10001", "name": "In Progress"},
			"customfield_14069": "2024-06-01T22:00:00.000+0000"
		},
		"properties": {
			"proforma.forms.i9f": {
				"design": {"questions": {"1": {"type": "ts", "label": "Reason"}}},
				"state": {"answers": {"1": {"text": "maintenance"}}}
			}
		}
	}`

	extra := map[string]http.HandlerFunc{
		"/rest/api/3/issue/OPS-7": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "*all", r.URL.Query().Get("properties"))
			w.Write([]byte(issueJSON)) // nolint:errcheck
		},
	}
	srv := newTestServer(t, extra)
	defer srv.Close()
	client := newTestClient(t, srv)

	t.Run("extracts the flat summary record", func(t *testing.T) {
		detail, code, err := client.IssueDetail(context.Background(), "OPS-7", false)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, IssueSummary{
			ReporterAccountID:    "rep-1",
			ReporterEmailAddress: "rep@example.com",
			IssueStatusID:        "10001",
			IssueStatusName:      "In Progress",
			ChangeStartDatetime:  "2024-06-01T22:00:00.000+0000",
			AssigneeID:           "asg-1",
			AssigneeEmailAddress: "asg@example.com",
		}, detail.Summary)
		assert.Nil(t, detail.FormReport)
	})

	t.Run("consolidates the form when requested", func(t *testing.T) {
		detail, _, err := client.IssueDetail(context.Background(), "OPS-7", true)
		require.NoError(t, err)
		require.Len(t, detail.FormReport, 1)
		assert.Equal(t, "maintenance", *detail.FormReport[0].ConsolidatedValue)
	})
}

func TestRoleUsers(t *testing.T) {
	t.Run("enriches actors with email addresses", func(t *testing.T) {
		extra := map[string]http.HandlerFunc{
			"/rest/api/3/project/10200/role/10499": func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{
					"id": 10499, "name": "Approvers",
					"actors": [{"id": 1, "displayName": "Jane", "actorUser": {"accountId": "acc-1"}}]
				}`)) // nolint:errcheck
			},
			"/rest/api/3/user": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "acc-1", r.URL.Query().Get("accountId"))
				json.NewEncoder(w).Encode(User{AccountID: "acc-1", EmailAddress: "jane@example.com"}) // nolint:errcheck
			},
		}
		srv := newTestServer(t, extra)
		defer srv.Close()
		client := newTestClient(t, srv)

		role, code, err := client.RoleUsers(context.Background(), 10499, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, code)
		require.Len(t, role.Actors, 1)
		assert.Equal(t, "jane@example.com", role.Actors[0].Email)
	})
}

func TestUserByEmail(t *testing.T) {
	t.Run("returns the first search match", func(t *testing.T) {
		extra := map[string]http.HandlerFunc{
			"/rest/api/3/user/search": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "jane.doe@example.com", r.URL.Query().Get("query"))
				json.NewEncoder(w).Encode([]User{{AccountID: "acc-1", EmailAddress: "jane.doe@example.com"}}) // nolint:errcheck
			},
		}
		srv := newTestServer(t, extra)
		defer srv.Close()
		client := newTestClient(t, srv)

		result, code, err := client.UserByEmail(context.Background(), "jane.doe@example.com")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, result.Found)
		assert.Equal(t, "acc-1", result.User.AccountID)
	})

	t.Run("empty result reports not found without error", func(t *testing.T) {
		extra := map[string]http.HandlerFunc{
			"/rest/api/3/user/search": func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`)) // nolint:errcheck
			},
		}
		srv := newTestServer(t, extra)
		defer srv.Close()
		client := newTestClient(t, srv)

		result, code, err := client.UserByEmail(context.Background(), "jane.doe@example.com")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, code)
		assert.False(t, result.Found)
	})
}
