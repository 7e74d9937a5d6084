package app

import (
	"context"
	"crypto/sha256"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"jira_bridge/internal/config"
	"jira_bridge/internal/handler"
	"jira_bridge/internal/jira"
	"jira_bridge/internal/logger"
	"jira_bridge/internal/notify"
	"jira_bridge/internal/service/openai"
	"jira_bridge/internal/storage"
)

// NewJiraClient loads configuration, pulls the basic-auth credentials from
// the S3 credential store, and constructs the Jira client with its cached
// defaults.
func NewJiraClient(ctx context.Context) (*jira.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogLocation); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config: %v", err)
	}
	store := storage.NewS3CredentialStore(
		s3.NewFromConfig(awsCfg),
		cfg.CredentialBucket,
		credentialKey(cfg.CredentialService),
	)
	cred, err := store.GetCredential(cfg.CredentialService)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load Jira credentials: %v", err)
	}

	client, err := jira.NewClient(ctx, jira.Options{
		BaseURL:     cfg.JiraURL,
		Credentials: jira.Credentials{Username: cred.Username, Token: cred.Token},
		ProjectKey:  cfg.DefaultProjectKey,
		IssueType:   cfg.DefaultIssueType,
		Priority:    cfg.DefaultPriority,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Jira client: %v", err)
	}
	return client, cfg, nil
}

// NewBridge builds the full HTTP bridge: Jira client plus the optional
// Slack notifier and AI summarizer.
func NewBridge(ctx context.Context) (*handler.Bridge, *config.Config, error) {
	client, cfg, err := NewJiraClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	notifier := notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannelID)

	var summarizer *openai.Client
	if cfg.AzureOpenAIKey != "" && cfg.AzureOpenAIEndpoint != "" && cfg.AzureOpenAIDeployment != "" {
		summarizer, err = openai.NewClient(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIKey, cfg.AzureOpenAIDeployment)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OpenAI client: %v", err)
		}
	}

	return handler.NewBridge(client, notifier, summarizer), cfg, nil
}

// credentialKey derives the 32-byte AES key for the credential store from
// the service name, so records are only readable by a bridge configured for
// the same service.
func credentialKey(service string) []byte {
	sum := sha256.Sum256([]byte("jira_bridge/" + service))
	return sum[:]
}
