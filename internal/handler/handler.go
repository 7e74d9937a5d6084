package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jira_bridge/internal/jira"
	"jira_bridge/internal/logger"
	"jira_bridge/internal/notify"
	"jira_bridge/internal/service/openai"
)

// Bridge exposes the Jira client's operations as REST endpoints.
type Bridge struct {
	jira       *jira.Client
	notifier   *notify.SlackNotifier
	summarizer *openai.Client // nil when Azure OpenAI is not configured
}

// NewBridge wires the client with its optional collaborators.
func NewBridge(client *jira.Client, notifier *notify.SlackNotifier, summarizer *openai.Client) *Bridge {
	return &Bridge{
		jira:       client,
		notifier:   notifier,
		summarizer: summarizer,
	}
}

// NewRouter builds the gin engine with the request-log middleware and all
// bridge routes registered.
func NewRouter(b *Bridge) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinLogMiddleware())
	b.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches all bridge endpoints to the engine.
func (b *Bridge) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", b.HandleHealthz)
	r.GET("/project", b.HandleProject)
	r.GET("/search", b.HandleSearch)

	r.POST("/issues", b.HandleCreateIssue)
	r.GET("/issues/:key", b.HandleIssueDetail)
	r.GET("/issues/:key/changelog", b.HandleChangelog)
	r.GET("/issues/:key/form-report", b.HandleFormReport)
	r.GET("/issues/:key/summary", b.HandleIssueSummary)
	r.POST("/issues/:key/transitions", b.HandleTransition)
	r.POST("/issues/:key/comments", b.HandleAddComment)
	r.POST("/issues/:key/attachments", b.HandleAddAttachment)
	r.PUT("/issues/:key/assignee", b.HandleAssign)
	r.PUT("/issues/:key/fields", b.HandleUpdateFields)

	r.GET("/users", b.HandleUserLookup)

	r.GET("/roles/:roleID", b.HandleRoleInfo)
	r.GET("/roles/:roleID/users", b.HandleRoleUsers)
	r.POST("/roles/:roleID/users", b.HandleRoleAddUser)
}

// HandleHealthz reports liveness.
func (b *Bridge) HandleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleProject returns the project cached at client construction.
func (b *Bridge) HandleProject(c *gin.Context) {
	c.JSON(http.StatusOK, b.jira.Project)
}

// failure renders the sentinel status code alongside the error so callers
// can branch on the failure origin.
func failure(c *gin.Context, sentinel int, err error) {
	c.JSON(http.StatusBadGateway, gin.H{
		"status_code": sentinel,
		"error":       err.Error(),
	})
}
