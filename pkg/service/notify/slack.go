// Package notify delivers task notifications to the compliance team.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/slack-go/slack"
)

// DefaultChannel is the channel used when none is configured
const DefaultChannel = "#compliance"

// slackNotifier posts notifications to a Slack channel
type slackNotifier struct {
	api     *slack.Client
	channel string
}

// Option is a functional option for notifier configuration
type Option func(*slackNotifier)

// WithChannel sets the Slack channel to post to
func WithChannel(channel string) Option {
	return func(n *slackNotifier) {
		n.channel = channel
	}
}

// NewSlack creates a Slack notifier with the provided bot token
func NewSlack(token string, opts ...Option) (interfaces.Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	n := &slackNotifier{
		api:     slack.New(token),
		channel: DefaultChannel,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

func (n *slackNotifier) Send(ctx context.Context, msg *model.Notification) error {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, msg.Subject, false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, msg.Body, false, false),
			nil, nil,
		),
	}

	if recipients := formatRecipients(msg); recipients != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, recipients, false, false),
		))
	}

	if _, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(msg.Subject, false),
	); err != nil {
		return goerr.Wrap(err, "failed to post notification",
			goerr.V("channel", n.channel), goerr.V("subject", msg.Subject))
	}

	return nil
}

func formatRecipients(msg *model.Notification) string {
	var parts []string
	if len(msg.To) > 0 {
		parts = append(parts, fmt.Sprintf("To: %s", strings.Join(msg.To, ", ")))
	}
	if len(msg.CC) > 0 {
		parts = append(parts, fmt.Sprintf("CC: %s", strings.Join(msg.CC, ", ")))
	}
	return strings.Join(parts, " / ")
}
