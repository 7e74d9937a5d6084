package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"

	"go.uber.org/zap"

	"jira_bridge/internal/logger"
)

// IssueInput holds the caller-supplied fields for CreateIssue. Zero values
// fall back to the client's cached defaults.
type IssueInput struct {
	Summary     string
	ProjectID   string
	IssueTypeID string
	Description string
	Assignee    string
	PriorityID  string
}

// adfDoc wraps plain text into the Atlassian Document Format body Jira
// expects for descriptions and comments.
func adfDoc(text string) map[string]any {
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []map[string]any{
			{
				"type": "paragraph",
				"content": []map[string]any{
					{"type": "text", "text": text},
				},
			},
		},
	}
}

// SearchIssues runs a JQL search and returns the matching issues.
func (c *Client) SearchIssues(ctx context.Context, jql string) (SearchResult, int, error) {
	query := url.Values{}
	query.Set("jql", jql)
	body, code, err := c.do(ctx, http.MethodGet, "api/3/search", query, nil)
	if err != nil {
		logger.GetLogger().Error("failed to search issues",
			zap.String("jql", jql),
			zap.Int("status_code", StatusSearchFailed),
			zap.Error(err))
		return SearchResult{}, StatusSearchFailed, err
	}
	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		logger.GetLogger().Error("failed to parse search response",
			zap.String("jql", jql),
			zap.Int("status_code", StatusSearchFailed),
			zap.Error(err))
		return SearchResult{}, StatusSearchFailed, err
	}
	logger.GetLogger().Debug("issue search",
		zap.String("jql", jql),
		zap.Int("status_code", code),
		zap.Int("total", result.Total))
	return result, code, nil
}

// CreateIssue creates an issue, substituting the cached defaults for any
// project, issue type, or priority left empty.
func (c *Client) CreateIssue(ctx context.Context, input IssueInput) (CreatedIssue, int, error) {
	if input.ProjectID == "" {
		input.ProjectID = c.ProjectID
	}
	if input.IssueTypeID == "" {
		input.IssueTypeID = c.DefaultIssueTypeID
	}
	if input.PriorityID == "" {
		input.PriorityID = c.DefaultPriorityID
	}

	payload := map[string]any{
		"fields": map[string]any{
			"assignee":    map[string]any{"accountId": input.Assignee},
			"description": adfDoc(input.Description),
			"issuetype":   map[string]any{"id": input.IssueTypeID},
			"priority":    map[string]any{"id": input.PriorityID},
			"project":     map[string]any{"id": input.ProjectID},
			"summary":     input.Summary,
		},
	}

	body, code, err := c.do(ctx, http.MethodPost, "api/3/issue", nil, payload)
	if err != nil {
		logger.GetLogger().Error("failed to create issue",
			zap.String("project_id", input.ProjectID),
			zap.String("summary", input.Summary),
			zap.Int("status_code", StatusCreateFailed),
			zap.Error(err))
		return CreatedIssue{}, StatusCreateFailed, err
	}
	var created CreatedIssue
	if err := json.Unmarshal(body, &created); err != nil {
		logger.GetLogger().Error("failed to parse create response",
			zap.String("project_id", input.ProjectID),
			zap.Int("status_code", StatusCreateFailed),
			zap.Error(err))
		return CreatedIssue{}, StatusCreateFailed, err
	}
	logger.GetLogger().Info("issue created",
		zap.Int("status_code", code),
		zap.String("project_id", input.ProjectID),
		zap.String("summary", input.Summary),
		zap.String("issue_type_id", input.IssueTypeID),
		zap.String("priority_id", input.PriorityID),
		zap.String("assignee", input.Assignee),
		zap.String("key", created.Key))
	return created, code, nil
}

// TransitionIssue moves an issue through a workflow transition.
func (c *Client) TransitionIssue(ctx context.Context, issueID string, transitionID int) (int, error) {
	payload := map[string]any{
		"transition": map[string]any{"id": strconv.Itoa(transitionID)},
	}
	_, code, err := c.do(ctx, http.MethodPost, "api/3/issue/"+url.PathEscape(issueID)+"/transitions", nil, payload)
	if err != nil {
		logger.GetLogger().Error("failed to transition issue",
			zap.String("issue_id", issueID),
			zap.Int("transition_id", transitionID),
			zap.Int("status_code", StatusTransitionFailed),
			zap.Error(err))
		return StatusTransitionFailed, err
	}
	logger.GetLogger().Info("issue transitioned",
		zap.Int("status_code", code),
		zap.String("issue_id", issueID),
		zap.Int("transition_id", transitionID))
	return code, nil
}

// UpdateIssueFields updates arbitrary issue fields, e.g.
// {"customfield_14064": [{"accountId": "..."}]}.
func (c *Client) UpdateIssueFields(ctx context.Context, issueID string, fields map[string]any) (int, error) {
	payload := map[string]any{"fields": fields}
	_, code, err := c.do(ctx, http.MethodPut, "api/3/issue/"+url.PathEscape(issueID), nil, payload)
	if err != nil {
		logger.GetLogger().Error("failed to update issue fields",
			zap.String("issue_id", issueID),
			zap.Int("status_code", StatusFieldUpdateFailed),
			zap.Error(err))
		return StatusFieldUpdateFailed, err
	}
	logger.GetLogger().Info("issue fields updated",
		zap.Int("status_code", code),
		zap.String("issue_id", issueID))
	return code, nil
}

// IssueDetail retrieves an issue with all properties and extracts the flat
// summary record. With includeForms set, the proforma form attached to the
// issue is consolidated into tabular question/answer rows.
func (c *Client) IssueDetail(ctx context.Context, issueID string, includeForms bool) (IssueDetail, int, error) {
	query := url.Values{}
	query.Set("properties", "*all")
	body, code, err := c.do(ctx, http.MethodGet, "api/3/issue/"+url.PathEscape(issueID), query, nil)
	if err != nil {
		logger.GetLogger().Error("failed to retrieve issue detail",
			zap.String("issue_id", issueID),
			zap.Int("status_code", StatusIssueDetailFailed),
			zap.Error(err))
		return IssueDetail{}, StatusIssueDetailFailed, err
	}

	var doc issueDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		logger.GetLogger().Error("failed to parse issue detail",
			zap.String("issue_id", issueID),
			zap.Int("status_code", StatusIssueDetailFailed),
			zap.Error(err))
		return IssueDetail{}, StatusIssueDetailFailed, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return IssueDetail{}, StatusIssueDetailFailed, err
	}

	detail := IssueDetail{
		Summary: IssueSummary{
			IssueStatusID:       doc.Fields.Status.ID,
			IssueStatusName:     doc.Fields.Status.Name,
			ChangeStartDatetime: doc.Fields.ChangeStartDatetime,
		},
		Issue: raw,
	}
	if doc.Fields.Reporter != nil {
		detail.Summary.ReporterAccountID = doc.Fields.Reporter.AccountID
		detail.Summary.ReporterEmailAddress = doc.Fields.Reporter.EmailAddress
	}
	if doc.Fields.Assignee != nil {
		detail.Summary.AssigneeID = doc.Fields.Assignee.AccountID
		detail.Summary.AssigneeEmailAddress = doc.Fields.Assignee.EmailAddress
	}

	if includeForms {
		report, err := ConsolidateForm(doc.Properties)
		if err != nil {
			logger.GetLogger().Error("failed to consolidate issue form",
				zap.String("issue_id", issueID),
				zap.Int("status_code", StatusIssueDetailFailed),
				zap.Error(err))
			return IssueDetail{}, StatusIssueDetailFailed, err
		}
		detail.FormReport = report
	}

	logger.GetLogger().Debug("issue detail",
		zap.String("issue_id", issueID),
		zap.Int("status_code", code),
		zap.String("status_name", detail.Summary.IssueStatusName))
	return detail, code, nil
}

// AddComment adds a plain-text comment to an issue, wrapped in ADF.
func (c *Client) AddComment(ctx context.Context, issueID, comment string) (int, error) {
	payload := map[string]any{"body": adfDoc(comment)}
	_, code, err := c.do(ctx, http.MethodPost, "api/3/issue/"+url.PathEscape(issueID)+"/comment", nil, payload)
	if err != nil {
		logger.GetLogger().Error("failed to add comment",
			zap.String("issue_id", issueID),
			zap.Int("status_code", StatusCommentFailed),
			zap.Error(err))
		return StatusCommentFailed, err
	}
	logger.GetLogger().Info("comment added",
		zap.Int("status_code", code),
		zap.String("issue_id", issueID))
	return code, nil
}

// AssignIssue sets the assignee of an issue.
func (c *Client) AssignIssue(ctx context.Context, issueID, accountID string) (int, error) {
	payload := map[string]any{"accountId": accountID}
	_, code, err := c.do(ctx, http.MethodPut, "api/3/issue/"+url.PathEscape(issueID)+"/assignee", nil, payload)
	if err != nil {
		logger.GetLogger().Error("failed to assign issue",
			zap.String("issue_id", issueID),
			zap.String("account_id", accountID),
			zap.Int("status_code", StatusAssignFailed),
			zap.Error(err))
		return StatusAssignFailed, err
	}
	logger.GetLogger().Info("issue assigned",
		zap.Int("status_code", code),
		zap.String("issue_id", issueID),
		zap.String("account_id", accountID))
	return code, nil
}

// AddAttachment uploads a local file as an issue attachment. Jira requires
// the XSRF check to be disabled for multipart uploads.
func (c *Client) AddAttachment(ctx context.Context, issueID, filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		logger.GetLogger().Error("failed to open attachment",
			zap.String("issue_id", issueID),
			zap.String("file", filePath),
			zap.Int("status_code", StatusAttachmentFailed),
			zap.Error(err))
		return StatusAttachmentFailed, err
	}
	defer file.Close() // nolint:errcheck

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filePath))
	header.Set("Content-Type", AttachmentContentType(filePath))
	part, err := writer.CreatePart(header)
	if err != nil {
		return StatusAttachmentFailed, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return StatusAttachmentFailed, err
	}
	if err := writer.Close(); err != nil {
		return StatusAttachmentFailed, err
	}

	rel, _ := url.Parse("api/3/issue/" + url.PathEscape(issueID) + "/attachments")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.ResolveReference(rel).String(), &buf)
	if err != nil {
		return StatusAttachmentFailed, err
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Atlassian-Token", "no-check")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		logger.GetLogger().Error("failed to add attachment",
			zap.String("issue_id", issueID),
			zap.String("file", filePath),
			zap.Int("status_code", StatusAttachmentFailed),
			zap.Error(err))
		return StatusAttachmentFailed, err
	}
	defer resp.Body.Close() // nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.GetLogger().Info("attachment added",
		zap.Int("status_code", resp.StatusCode),
		zap.String("issue_id", issueID),
		zap.String("file", filePath))
	return resp.StatusCode, nil
}

// IssueChangelog retrieves an issue's changelog page.
func (c *Client) IssueChangelog(ctx context.Context, issueID string, maxResults int) (Changelog, int, error) {
	if maxResults <= 0 {
		maxResults = 1000
	}
	query := url.Values{}
	query.Set("maxResults", strconv.Itoa(maxResults))
	body, code, err := c.do(ctx, http.MethodGet, "api/3/issue/"+url.PathEscape(issueID)+"/changelog", query, nil)
	if err != nil {
		logger.GetLogger().Error("failed to retrieve changelog",
			zap.String("issue_id", issueID),
			zap.Int("status_code", StatusChangelogFailed),
			zap.Error(err))
		return Changelog{}, StatusChangelogFailed, err
	}
	var changelog Changelog
	if err := json.Unmarshal(body, &changelog); err != nil {
		logger.GetLogger().Error("failed to parse changelog",
			zap.String("issue_id", issueID),
			zap.Int("status_code", StatusChangelogFailed),
			zap.Error(err))
		return Changelog{}, StatusChangelogFailed, err
	}
	logger.GetLogger().Debug("issue changelog",
		zap.String("issue_id", issueID),
		zap.Int("status_code", code))
	return changelog, code, nil
}
