package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jira_bridge/internal/jira"
	"jira_bridge/internal/logger"
)

// CreateIssueRequest is the body of POST /issues. Empty defaults fall back
// to the client's cached project, issue type, and priority.
type CreateIssueRequest struct {
	Summary     string `json:"summary" binding:"required"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	ProjectID   string `json:"project_id"`
	IssueType   string `json:"issue_type"`
	Priority    string `json:"priority"`
}

// HandleCreateIssue handles POST /issues
func (b *Bridge) HandleCreateIssue(c *gin.Context) {
	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := jira.IssueInput{
		Summary:     req.Summary,
		Description: req.Description,
		Assignee:    req.Assignee,
		ProjectID:   req.ProjectID,
	}
	if req.IssueType != "" {
		id, ok := jira.Lookup(jira.LookupIssueType, req.IssueType)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown issue type"})
			return
		}
		input.IssueTypeID = strconv.Itoa(id)
	}
	if req.Priority != "" {
		id, ok := jira.Lookup(jira.LookupPriority, req.Priority)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown priority"})
			return
		}
		input.PriorityID = strconv.Itoa(id)
	}

	created, code, err := b.jira.CreateIssue(c.Request.Context(), input)
	if err != nil {
		failure(c, code, err)
		return
	}
	b.notifier.IssueCreated(created.Key, req.Summary)
	c.JSON(code, created)
}

// HandleIssueDetail handles GET /issues/:key; ?forms=true adds the
// consolidated form report.
func (b *Bridge) HandleIssueDetail(c *gin.Context) {
	includeForms := c.Query("forms") == "true"
	detail, code, err := b.jira.IssueDetail(c.Request.Context(), c.Param("key"), includeForms)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, gin.H{
		"summary":     detail.Summary,
		"issue":       detail.Issue,
		"form_report": detail.FormReport,
	})
}

// HandleFormReport handles GET /issues/:key/form-report
func (b *Bridge) HandleFormReport(c *gin.Context) {
	detail, code, err := b.jira.IssueDetail(c.Request.Context(), c.Param("key"), true)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, detail.FormReport)
}

// HandleIssueSummary handles GET /issues/:key/summary, condensing the issue
// and its form report through the AI summarizer.
func (b *Bridge) HandleIssueSummary(c *gin.Context) {
	if b.summarizer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "summarizer not configured"})
		return
	}
	detail, code, err := b.jira.IssueDetail(c.Request.Context(), c.Param("key"), true)
	if err != nil {
		failure(c, code, err)
		return
	}

	content, err := json.Marshal(gin.H{
		"summary":     detail.Summary,
		"form_report": detail.FormReport,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode issue"})
		return
	}
	summary, err := b.summarizer.SummarizeIssue(c.Request.Context(), string(content))
	if err != nil {
		logger.GetLogger().Error("failed to summarize issue",
			zap.String("issue_key", c.Param("key")),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to summarize issue"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// TransitionRequest is the body of POST /issues/:key/transitions. Either a
// transition label or a raw transition ID must be set.
type TransitionRequest struct {
	Transition   string `json:"transition"`
	TransitionID int    `json:"transition_id"`
}

// HandleTransition handles POST /issues/:key/transitions
func (b *Bridge) HandleTransition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	transitionID := req.TransitionID
	if req.Transition != "" {
		id, ok := jira.Lookup(jira.LookupTransition, req.Transition)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown transition"})
			return
		}
		transitionID = id
	}
	if transitionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transition or transition_id required"})
		return
	}

	issueKey := c.Param("key")
	code, err := b.jira.TransitionIssue(c.Request.Context(), issueKey, transitionID)
	if err != nil {
		failure(c, code, err)
		return
	}
	b.notifier.IssueTransitioned(issueKey, transitionID)
	c.JSON(code, gin.H{"status_code": code})
}

// CommentRequest is the body of POST /issues/:key/comments.
type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// HandleAddComment handles POST /issues/:key/comments
func (b *Bridge) HandleAddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	code, err := b.jira.AddComment(c.Request.Context(), c.Param("key"), req.Comment)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, gin.H{"status_code": code})
}

// AttachmentRequest is the body of POST /issues/:key/attachments. The file
// must be reachable on the bridge host.
type AttachmentRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// HandleAddAttachment handles POST /issues/:key/attachments
func (b *Bridge) HandleAddAttachment(c *gin.Context) {
	var req AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	code, err := b.jira.AddAttachment(c.Request.Context(), c.Param("key"), req.FilePath)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, gin.H{"status_code": code})
}

// AssignRequest is the body of PUT /issues/:key/assignee.
type AssignRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

// HandleAssign handles PUT /issues/:key/assignee
func (b *Bridge) HandleAssign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	code, err := b.jira.AssignIssue(c.Request.Context(), c.Param("key"), req.AccountID)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, gin.H{"status_code": code})
}

// FieldUpdateRequest is the body of PUT /issues/:key/fields.
type FieldUpdateRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

// HandleUpdateFields handles PUT /issues/:key/fields
func (b *Bridge) HandleUpdateFields(c *gin.Context) {
	var req FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	code, err := b.jira.UpdateIssueFields(c.Request.Context(), c.Param("key"), req.Fields)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, gin.H{"status_code": code})
}

// HandleChangelog handles GET /issues/:key/changelog
func (b *Bridge) HandleChangelog(c *gin.Context) {
	maxResults, _ := strconv.Atoi(c.Query("maxResults"))
	changelog, code, err := b.jira.IssueChangelog(c.Request.Context(), c.Param("key"), maxResults)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, changelog)
}

// HandleSearch handles GET /search?jql=
func (b *Bridge) HandleSearch(c *gin.Context) {
	jql := c.Query("jql")
	if jql == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jql query parameter required"})
		return
	}
	result, code, err := b.jira.SearchIssues(c.Request.Context(), jql)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, result)
}
