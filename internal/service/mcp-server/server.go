package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"jira_bridge/internal/jira"
)

// NewServer creates a new MCP server instance backed by the given Jira
// client
func NewServer(client *jira.Client) (*server.MCPServer, error) {
	// Create MCP server
	s := server.NewMCPServer(
		"jira bridge",
		"1.0.0",
	)

	// Add Jira tools
	if err := registerJiraTools(s, client); err != nil {
		return nil, err
	}

	return s, nil
}

// Serve starts the MCP server
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
