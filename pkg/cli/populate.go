package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/cli/config"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/usecase"
	"github.com/regmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdPopulate() *cli.Command {
	var intervalRaw string
	var runDateRaw string
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "interval",
			Usage:       "Recurring interval to expand (daily, weekly, fortnightly, monthly, quarterly, halfyearly, annual)",
			Required:    true,
			Sources:     cli.EnvVars("THEMIS_POPULATE_INTERVAL"),
			Destination: &intervalRaw,
		},
		&cli.StringFlag{
			Name:        "run-date",
			Usage:       "Override the run date (YYYY-MM-DD), defaults to today",
			Destination: &runDateRaw,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "populate",
		Aliases: []string{"p"},
		Usage:   "Expand active recurring templates into tasks for the current period",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			interval, err := types.ParseRecurringInterval(intervalRaw)
			if err != nil {
				return goerr.Wrap(err, "invalid interval")
			}

			var runDate *time.Time
			if runDateRaw != "" {
				date, err := time.Parse("2006-01-02", runDateRaw)
				if err != nil {
					return goerr.Wrap(err, "invalid run date", goerr.V("run_date", runDateRaw))
				}
				runDate = &date
			}

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

			result, err := uc.Expander.PopulateTasks(ctx, interval, runDate)
			if err != nil {
				return goerr.Wrap(err, "failed to populate tasks")
			}

			color.New(color.Bold).Printf("Expansion run: %s (%s)\n",
				result.Interval, result.RunDate.Format("2006-01-02"))
			color.Green("  created: %d", len(result.Created))
			color.Yellow("  skipped: %d (period already populated)", result.Skipped)
			if len(result.Failures) > 0 {
				color.Red("  failed:  %d", len(result.Failures))
				for _, f := range result.Failures {
					color.Red("    - template %d (%s): %s", f.TemplateID, f.Name, f.Reason)
				}
			}

			logging.Default().Info("Expansion completed",
				"interval", result.Interval,
				"run_date", result.RunDate,
				"created", len(result.Created),
				"skipped", result.Skipped,
				"failures", len(result.Failures))

			return nil
		},
	}
}
