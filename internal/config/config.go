package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Jira configuration
	JiraURL           string // Required: Jira base URL up to and including /rest/
	DefaultProjectKey string // Required: project whose ID is cached at startup
	DefaultIssueType  string // Required: human label resolved against the issue type table
	DefaultPriority   string // Required: human label resolved against the priority table

	// Credential store configuration
	CredentialBucket  string // Required: S3 bucket holding the encrypted credential records
	CredentialService string // Required: service name keying the Jira credential record

	// Log configuration
	LogLevel    string // Required: log level
	LogLocation string // Optional: additional log file sink

	// Slack notification configuration (optional; notifier disabled if unset)
	SlackBotToken  string
	SlackChannelID string

	// Azure OpenAI configuration (optional; summarizer disabled if unset)
	AzureOpenAIKey        string
	AzureOpenAIEndpoint   string
	AzureOpenAIDeployment string

	// ListenAddr is the HTTP bind address of the server entrypoint
	ListenAddr string
}

var (
	// instance holds the singleton config instance
	instance *Config
)

// Get returns the singleton config instance
func Get() *Config {
	if instance == nil {
		panic("config not initialized")
	}
	return instance
}

// Load creates a new Config instance from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Load required values
	requiredVars := map[string]*string{
		"JIRA_URL": &cfg.JiraURL,

		"DEFAULT_PROJECT_KEY": &cfg.DefaultProjectKey,
		"DEFAULT_ISSUE_TYPE":  &cfg.DefaultIssueType,
		"DEFAULT_PRIORITY":    &cfg.DefaultPriority,

		"CREDENTIAL_BUCKET_NAME": &cfg.CredentialBucket,
		"CREDENTIAL_SERVICE":     &cfg.CredentialService,

		"LOG_LEVEL": &cfg.LogLevel,
	}

	var missingVars []string
	for env, ptr := range requiredVars {
		*ptr = os.Getenv(env)
		if *ptr == "" {
			missingVars = append(missingVars, env)
		}
	}

	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	// Optional values
	cfg.LogLocation = os.Getenv("LOG_LOCATION")
	cfg.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")
	cfg.SlackChannelID = os.Getenv("SLACK_CHANNEL_ID")
	cfg.AzureOpenAIKey = os.Getenv("AZURE_OPENAI_KEY")
	cfg.AzureOpenAIEndpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
	cfg.AzureOpenAIDeployment = os.Getenv("AZURE_OPENAI_DEPLOYMENT")
	cfg.ListenAddr = os.Getenv("LISTEN_ADDR")
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	// Store the instance
	instance = cfg

	return cfg, nil
}
