package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/regmon-lab/themis/pkg/cli/config"
	httpctrl "github.com/regmon-lab/themis/pkg/controller/http"
	"github.com/regmon-lab/themis/pkg/usecase"
	"github.com/regmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var orgPath string
	var repoCfg config.Repository
	var slackCfg config.Slack
	var storageCfg config.Storage

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("THEMIS_ADDR"),
			Destination: &addr,
		},
		config.OrgFlag(&orgPath),
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Seed departments, users and holidays when a config is given
			if orgPath != "" {
				orgCfg, err := config.LoadOrgConfig(orgPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load org config")
				}
				if err := orgCfg.Apply(ctx, repo); err != nil {
					return goerr.Wrap(err, "failed to apply org config")
				}
				logging.Default().Info("Organization seed applied",
					"departments", len(orgCfg.Departments),
					"users", len(orgCfg.Users),
					"holidays", len(orgCfg.Holidays))
			}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure notifier")
			}

			files, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure file store")
			}

			uc := usecase.New(repo,
				usecase.WithNotifier(notifier),
				usecase.WithFileStore(files),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, repo.User()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return goerr.Wrap(err, "HTTP server failed")
			case sig := <-sigCh:
				logging.Default().Info("Shutting down", "signal", sig.String())
			case <-ctx.Done():
				logging.Default().Info("Shutting down", "reason", ctx.Err())
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown HTTP server")
			}

			return nil
		},
	}
}
