package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"jira_bridge/internal/app"
	"jira_bridge/internal/handler"
	"jira_bridge/internal/logger"
)

var ginLambda *ginadapter.GinLambda

func init() {
	bridge, _, err := app.NewBridge(context.Background())
	if err != nil {
		log.Fatalf("Failed to start bridge: %v", err)
	}
	ginLambda = ginadapter.New(handler.NewRouter(bridge))
}

func handleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	defer logger.Sync() // nolint:errcheck
	lambda.Start(handleRequest)
}
