package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/cli/config"
	"github.com/regmon-lab/themis/pkg/usecase"
	"github.com/regmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdNotify() *cli.Command {
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := repoCfg.Flags()
	flags = append(flags, slackCfg.Flags()...)

	run := func(ctx context.Context, kind string, send func(*usecase.UseCases) (int, error)) error {
		repo, err := repoCfg.Configure(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to initialize repository")
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logging.Default().Error("failed to close repository", "error", err.Error())
			}
		}()

		notifier, err := slackCfg.Configure()
		if err != nil {
			return goerr.Wrap(err, "failed to configure notifier")
		}

		uc := usecase.New(repo, usecase.WithNotifier(notifier))

		sent, err := send(uc)
		if err != nil {
			return goerr.Wrap(err, "failed to send digests", goerr.V("kind", kind))
		}

		logging.Default().Info("Digests sent", "kind", kind, "count", sent)
		return nil
	}

	return &cli.Command{
		Name:  "notify",
		Usage: "Send reminder digests",
		Commands: []*cli.Command{
			{
				Name:  "due-today",
				Usage: "Send each department a digest of its tasks due today",
				Flags: flags,
				Action: func(ctx context.Context, c *cli.Command) error {
					return run(ctx, "due-today", func(uc *usecase.UseCases) (int, error) {
						return uc.Reminders.DueToday(ctx)
					})
				},
			},
			{
				Name:  "overdue",
				Usage: "Send each department a digest of its overdue tasks",
				Flags: flags,
				Action: func(ctx context.Context, c *cli.Command) error {
					return run(ctx, "overdue", func(uc *usecase.UseCases) (int, error) {
						return uc.Reminders.Overdue(ctx)
					})
				},
			},
			{
				Name:  "review",
				Usage: "Send compliance admins a digest of tasks awaiting review",
				Flags: flags,
				Action: func(ctx context.Context, c *cli.Command) error {
					return run(ctx, "review", func(uc *usecase.UseCases) (int, error) {
						return uc.Reminders.ReviewPending(ctx)
					})
				},
			},
		},
	}
}
