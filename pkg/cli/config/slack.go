package config

import (
	"log/slog"

	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/service/notify"
	"github.com/regmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for Slack notification configuration
type Slack struct {
	botToken string
	channel  string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for workflow notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("THEMIS_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel for workflow notifications",
			Category:    "Slack",
			Value:       notify.DefaultChannel,
			Sources:     cli.EnvVars("THEMIS_SLACK_CHANNEL"),
			Destination: &x.channel,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channel),
	)
}

// IsConfigured checks if a bot token has been provided
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure returns a Slack notifier, or a discarding one when no bot
// token is configured.
func (x *Slack) Configure() (interfaces.Notifier, error) {
	if !x.IsConfigured() {
		logging.Default().Info("Slack bot token not configured, notifications are disabled")
		return notify.Discard{}, nil
	}

	notifier, err := notify.NewSlack(x.botToken, notify.WithChannel(x.channel))
	if err != nil {
		return nil, err
	}

	logging.Default().Info("Slack notifications enabled", "channel", x.channel)
	return notifier, nil
}
