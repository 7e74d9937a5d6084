package openai

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"go.uber.org/zap"

	"jira_bridge/internal/logger"
)

type Client struct {
	client         *azopenai.Client
	deploymentName string
}

func NewClient(endpoint, apiKey, deploymentName string) (*Client, error) {
	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:         client,
		deploymentName: deploymentName,
	}, nil
}

func (c *Client) Chat(ctx context.Context, messages []azopenai.ChatRequestMessageClassification) (string, error) {
	resp, err := c.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(c.deploymentName),
		Messages:       messages,
		N:              to.Ptr[int32](1),
	}, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return *resp.Choices[0].Message.Content, nil
}

// SummarizeIssue condenses an issue detail document plus its consolidated
// form report into a short plain-text digest.
func (c *Client) SummarizeIssue(ctx context.Context, content string) (string, error) {
	messages := []azopenai.ChatRequestMessageClassification{
		&azopenai.ChatRequestSystemMessage{
			Content: azopenai.NewChatRequestSystemMessageContent(`
You are a summarization assistant for an issue tracker. You receive one Jira
issue as JSON: its fields plus a consolidated form report of question/answer
rows.

Guidelines:
- Only output raw text. Do not use any Markdown syntax.
- Keep formatting plain and simple. For example, use "Status: IN PROGRESS".
- Lead with the issue key, summary, status, and assignee.
- Then list the form answers that carry information; skip empty answers.
- Always keep the summary under 2000 characters.
			`),
		},
		&azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(content),
		},
	}

	logger.GetLogger().Debug("sending issue summary request", zap.Int("content_len", len(content)))
	summary, err := c.Chat(ctx, messages)
	if err != nil || summary == "" {
		// If summarization fails, hand the original content back
		return content, err
	}
	return summary, nil
}
