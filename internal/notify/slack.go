package notify

import (
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"jira_bridge/internal/logger"
)

// SlackNotifier posts short issue lifecycle messages to a fixed channel.
// A nil notifier is valid and drops every notification, so callers never
// need to check whether Slack is configured.
type SlackNotifier struct {
	api       *slack.Client
	channelID string
}

// NewSlackNotifier returns a notifier for the given bot token and channel,
// or nil when the token is empty.
func NewSlackNotifier(token, channelID string) *SlackNotifier {
	if token == "" || channelID == "" {
		return nil
	}
	return &SlackNotifier{
		api:       slack.New(token),
		channelID: channelID,
	}
}

// IssueCreated announces a newly created issue.
func (n *SlackNotifier) IssueCreated(issueKey, summary string) {
	n.post(fmt.Sprintf("🆕 Issue *%s* created: %s", issueKey, summary))
}

// IssueTransitioned announces a workflow transition.
func (n *SlackNotifier) IssueTransitioned(issueID string, transitionID int) {
	n.post(fmt.Sprintf("🔄 Issue *%s* moved through transition %d", issueID, transitionID))
}

func (n *SlackNotifier) post(text string) {
	if n == nil {
		return
	}
	_, _, err := n.api.PostMessage(n.channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		logger.GetLogger().Error("failed to post slack notification",
			zap.String("channel_id", n.channelID),
			zap.Error(err))
	}
}
