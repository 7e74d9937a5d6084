package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jira_bridge/internal/jira"
)

// registerJiraTools registers all Jira-related tools with the server
func registerJiraTools(s *server.MCPServer, client *jira.Client) error {
	// Get Jira issue tool
	getJiraTool := mcp.NewTool("get_jira",
		mcp.WithDescription("Get details of a specific Jira issue"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Jira issue key (e.g., 'TVP-123')"),
		),
		mcp.WithBoolean("include_forms",
			mcp.Description("Include the consolidated form report"),
		),
	)

	// Search Jira tool
	searchJiraTool := mcp.NewTool("search_jira",
		mcp.WithDescription("Search Jira issues using JQL"),
		mcp.WithString("jql",
			mcp.Required(),
			mcp.Description("JQL query string"),
		),
	)

	// Create Jira issue tool
	createJiraTool := mcp.NewTool("create_jira",
		mcp.WithDescription("Create a Jira issue in the default project"),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Issue summary"),
		),
		mcp.WithString("description",
			mcp.Description("Issue description"),
		),
		mcp.WithString("assignee",
			mcp.Description("Assignee account ID"),
		),
	)

	// Transition Jira issue tool
	transitionJiraTool := mcp.NewTool("transition_jira",
		mcp.WithDescription("Move a Jira issue through a named workflow transition"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Jira issue key"),
		),
		mcp.WithString("transition",
			mcp.Required(),
			mcp.Description("Transition label (e.g., 'done', 'ready_for_work')"),
		),
	)

	// Add comment tool
	addCommentTool := mcp.NewTool("add_jira_comment",
		mcp.WithDescription("Add a comment to a Jira issue"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Jira issue key"),
		),
		mcp.WithString("comment",
			mcp.Required(),
			mcp.Description("Comment text"),
		),
	)

	// Form report tool
	formReportTool := mcp.NewTool("get_jira_form_report",
		mcp.WithDescription("Get the consolidated form question/answer report of a Jira issue"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Jira issue key"),
		),
	)

	// Register tools with handlers
	s.AddTool(getJiraTool, handleGetJira(client))
	s.AddTool(searchJiraTool, handleSearchJira(client))
	s.AddTool(createJiraTool, handleCreateJira(client))
	s.AddTool(transitionJiraTool, handleTransitionJira(client))
	s.AddTool(addCommentTool, handleAddComment(client))
	s.AddTool(formReportTool, handleFormReport(client))

	return nil
}

func handleGetJira(client *jira.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issueKey, ok := request.Params.Arguments["issue_key"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid issue_key parameter")
		}
		includeForms, _ := request.Params.Arguments["include_forms"].(bool)

		detail, code, err := client.IssueDetail(ctx, issueKey, includeForms)
		if err != nil {
			return nil, fmt.Errorf("failed to get issue (status %d): %v", code, err)
		}
		return toolResultJSON(detail)
	}
}

func handleSearchJira(client *jira.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jql, ok := request.Params.Arguments["jql"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid jql parameter")
		}

		result, code, err := client.SearchIssues(ctx, jql)
		if err != nil {
			return nil, fmt.Errorf("failed to search issues (status %d): %v", code, err)
		}
		return toolResultJSON(result)
	}
}

func handleCreateJira(client *jira.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, ok := request.Params.Arguments["summary"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid summary parameter")
		}
		description, _ := request.Params.Arguments["description"].(string)
		assignee, _ := request.Params.Arguments["assignee"].(string)

		created, code, err := client.CreateIssue(ctx, jira.IssueInput{
			Summary:     summary,
			Description: description,
			Assignee:    assignee,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create issue (status %d): %v", code, err)
		}
		return toolResultJSON(created)
	}
}

func handleTransitionJira(client *jira.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issueKey, ok := request.Params.Arguments["issue_key"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid issue_key parameter")
		}
		label, ok := request.Params.Arguments["transition"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid transition parameter")
		}
		transitionID, ok := jira.Lookup(jira.LookupTransition, label)
		if !ok {
			return nil, fmt.Errorf("unknown transition %q", label)
		}

		code, err := client.TransitionIssue(ctx, issueKey, transitionID)
		if err != nil {
			return nil, fmt.Errorf("failed to transition issue (status %d): %v", code, err)
		}
		return mcp.NewToolResultText(fmt.Sprintf(`{"status_code": %d}`, code)), nil
	}
}

func handleAddComment(client *jira.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issueKey, ok := request.Params.Arguments["issue_key"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid issue_key parameter")
		}
		comment, ok := request.Params.Arguments["comment"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid comment parameter")
		}

		code, err := client.AddComment(ctx, issueKey, comment)
		if err != nil {
			return nil, fmt.Errorf("failed to add comment (status %d): %v", code, err)
		}
		return mcp.NewToolResultText(fmt.Sprintf(`{"status_code": %d}`, code)), nil
	}
}

func handleFormReport(client *jira.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issueKey, ok := request.Params.Arguments["issue_key"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid issue_key parameter")
		}

		detail, code, err := client.IssueDetail(ctx, issueKey, true)
		if err != nil {
			return nil, fmt.Errorf("failed to get form report (status %d): %v", code, err)
		}
		return toolResultJSON(detail.FormReport)
	}
}

func toolResultJSON(v any) (*mcp.CallToolResult, error) {
	// convert result to json string
	jsonResult, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %v", err)
	}
	return mcp.NewToolResultText(string(jsonResult)), nil
}
