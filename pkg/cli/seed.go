package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/cli/config"
	"github.com/regmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var orgPath string
	var repoCfg config.Repository

	flags := []cli.Flag{
		config.OrgFlag(&orgPath),
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Load the organization seed (departments, users, holidays) into the repository",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if orgPath == "" {
				return goerr.New("org-config is required")
			}

			orgCfg, err := config.LoadOrgConfig(orgPath)
			if err != nil {
				return goerr.Wrap(err, "failed to load org config")
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

			if err := orgCfg.Apply(ctx, repo); err != nil {
				return goerr.Wrap(err, "failed to apply org config")
			}

			logging.Default().Info("Organization seed applied",
				"departments", len(orgCfg.Departments),
				"users", len(orgCfg.Users),
				"holidays", len(orgCfg.Holidays))

			return nil
		},
	}
}
