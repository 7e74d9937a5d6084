package main

import (
	"context"
	"fmt"
	"log"

	"jira_bridge/internal/app"
	mcpserver "jira_bridge/internal/service/mcp-server"
)

func main() {
	client, _, err := app.NewJiraClient(context.Background())
	if err != nil {
		log.Fatalf("Failed to create Jira client: %v", err)
	}

	// Create new MCP server
	server, err := mcpserver.NewServer(client)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Start server
	fmt.Println("Starting Jira Bridge MCP server...")
	if err := mcpserver.Serve(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
