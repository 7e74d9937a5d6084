package main

import (
	"context"
	"log"

	"jira_bridge/internal/app"
	"jira_bridge/internal/handler"
	"jira_bridge/internal/logger"
)

func main() {
	bridge, cfg, err := app.NewBridge(context.Background())
	if err != nil {
		log.Fatalf("Failed to start bridge: %v", err)
	}
	defer logger.Sync() // nolint:errcheck

	router := handler.NewRouter(bridge)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
