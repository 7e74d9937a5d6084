package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"jira_bridge/internal/logger"
)

// Sentinel status codes returned in place of an HTTP status when a call
// fails before a response is available. Every call site owns a distinct
// code so callers can tell where a failure originated. Validation-level
// variants carry a trailing 1 digit (-18 transport, -181 bad input).
const (
	StatusAuthFailed        = -14
	StatusProjectInfoFailed = -16
	StatusUserInfoFailed    = -17
	StatusUserByEmailFailed = -18
	StatusInvalidEmail      = -181
	StatusSearchFailed      = -21
	StatusIssueDetailFailed = -30
	StatusFieldUpdateFailed = -31
	StatusAttachmentFailed  = -32
	StatusCommentFailed     = -33
	StatusAssignFailed      = -34
	StatusCreateFailed      = -35
	StatusChangelogFailed   = -36
	StatusTransitionFailed  = -37
	StatusRoleUsersFailed   = -50
	StatusRoleAddFailed     = -51
	StatusRoleInfoFailed    = -52
)

// Credentials holds the basic-auth pair used against the Jira API.
type Credentials struct {
	Username string
	Token    string
}

// Options configures a new Client.
type Options struct {
	// BaseURL is the Jira instance URL up to and including "/rest/".
	BaseURL     string
	Credentials Credentials

	// ProjectKey is the default project; its ID is cached at construction.
	ProjectKey string

	// IssueType and Priority are human labels resolved against the
	// reference tables into the default IDs used by CreateIssue.
	IssueType string
	Priority  string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the Jira Cloud v3 REST API. Its cached defaults
// (project ID, authenticated account ID, default issue type and priority)
// are fetched once at construction and read-only afterwards.
type Client struct {
	baseURL *url.URL
	httpc   *http.Client
	creds   Credentials
	headers map[string]string

	DefaultProjectKey  string
	DefaultIssueTypeID string
	DefaultPriorityID  string

	// Cached at construction.
	Project   Project
	ProjectID string
	AccountID string
}

// NewClient builds a client and caches its defaults. Construction fails on
// configuration problems (bad URL, unknown default labels); failures of the
// initial project and identity lookups are logged and leave the respective
// cache empty, matching the single-attempt semantics of every other call.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	issueTypeID, ok := Lookup(LookupIssueType, opts.IssueType)
	if !ok {
		return nil, fmt.Errorf("unknown default issue type %q", opts.IssueType)
	}
	priorityID, ok := Lookup(LookupPriority, opts.Priority)
	if !ok {
		return nil, fmt.Errorf("unknown default priority %q", opts.Priority)
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}

	c := &Client{
		baseURL: base,
		httpc:   httpc,
		creds:   opts.Credentials,
		headers: map[string]string{
			"Accept":           "application/json",
			"Content-Type":     "application/json",
			"X-ExperimentalAPI": "opt-in",
		},
		DefaultProjectKey:  opts.ProjectKey,
		DefaultIssueTypeID: strconv.Itoa(issueTypeID),
		DefaultPriorityID:  strconv.Itoa(priorityID),
	}

	if project, code, err := c.ProjectInfo(ctx, c.DefaultProjectKey); err != nil {
		logger.GetLogger().Error("failed to cache default project",
			zap.String("project_key", c.DefaultProjectKey),
			zap.Int("status_code", code),
			zap.Error(err))
	} else {
		c.Project = project
		c.ProjectID = project.ID
	}

	if me, code, err := c.Myself(ctx); err != nil {
		logger.GetLogger().Error("failed to cache authenticated user",
			zap.Int("status_code", code),
			zap.Error(err))
	} else {
		c.AccountID = me.AccountID
	}

	return c, nil
}

// Myself verifies the credentials against the identity endpoint and returns
// the authenticated user.
func (c *Client) Myself(ctx context.Context) (User, int, error) {
	body, code, err := c.do(ctx, http.MethodGet, "api/3/myself", nil, nil)
	if err != nil {
		logger.GetLogger().Error("authentication failed",
			zap.Int("status_code", StatusAuthFailed),
			zap.Error(err))
		return User{}, StatusAuthFailed, err
	}
	var me User
	if err := json.Unmarshal(body, &me); err != nil {
		logger.GetLogger().Error("authentication failed",
			zap.Int("status_code", StatusAuthFailed),
			zap.Error(err))
		return User{}, StatusAuthFailed, err
	}
	logger.GetLogger().Debug("authenticated",
		zap.Int("status_code", code),
		zap.String("account_id", me.AccountID))
	return me, code, nil
}

// ProjectInfo retrieves the details of a Jira project by key.
func (c *Client) ProjectInfo(ctx context.Context, projectKey string) (Project, int, error) {
	body, code, err := c.do(ctx, http.MethodGet, "api/3/project/"+url.PathEscape(projectKey), nil, nil)
	if err != nil {
		logger.GetLogger().Error("failed to retrieve project info",
			zap.String("project_key", projectKey),
			zap.Int("status_code", StatusProjectInfoFailed),
			zap.Error(err))
		return Project{}, StatusProjectInfoFailed, err
	}
	var project Project
	if err := json.Unmarshal(body, &project); err != nil {
		logger.GetLogger().Error("failed to parse project info",
			zap.String("project_key", projectKey),
			zap.Int("status_code", StatusProjectInfoFailed),
			zap.Error(err))
		return Project{}, StatusProjectInfoFailed, err
	}
	logger.GetLogger().Debug("project info",
		zap.String("project_key", projectKey),
		zap.Int("status_code", code),
		zap.String("project_id", project.ID))
	return project, code, nil
}

// do performs one authenticated request and returns the response body and
// transport status code. Errors cover request construction, the network
// round trip, and body reads; non-2xx statuses are left to the call sites.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, int, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal payload: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	rel, err := url.Parse(path)
	if err != nil {
		return nil, 0, fmt.Errorf("parse path: %w", err)
	}
	u := c.baseURL.ResolveReference(rel)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Token)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}
