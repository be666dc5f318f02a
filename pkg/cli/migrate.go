package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("THEMIS_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("THEMIS_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig()

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				plan, err := client.GetMigrationPlan(ctx, indexConfig)
				if err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}

				if len(plan.Steps) == 0 {
					logger.Info("No changes required")
					return nil
				}

				for _, step := range plan.Steps {
					logger.Info("Migration step",
						"collection", step.Collection,
						"operation", step.Operation,
						"description", step.Description,
						"destructive", step.Destructive)
				}
			} else {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx, indexConfig); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "tasks",
				Indexes: []fireconf.Index{
					// GetByPeriodKey: TemplateID ASC, PeriodKey ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "TemplateID", Order: fireconf.OrderAscending},
							{Path: "PeriodKey", Order: fireconf.OrderAscending},
						},
					},
					// List by status and due date
					{
						Fields: []fireconf.IndexField{
							{Path: "Status", Order: fireconf.OrderAscending},
							{Path: "DueDate", Order: fireconf.OrderAscending},
						},
					},
					// List by department and due date
					{
						Fields: []fireconf.IndexField{
							{Path: "DepartmentID", Order: fireconf.OrderAscending},
							{Path: "DueDate", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "templates",
				Indexes: []fireconf.Index{
					// FindActive: Active ASC, Interval ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "Active", Order: fireconf.OrderAscending},
							{Path: "Interval", Order: fireconf.OrderAscending},
						},
					},
					// FindActiveByMonth: Active ASC, RepeatMonth ASC, Interval ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "Active", Order: fireconf.OrderAscending},
							{Path: "RepeatMonth", Order: fireconf.OrderAscending},
							{Path: "Interval", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "remarks",
				Indexes: []fireconf.Index{
					// ListByTask: TaskID ASC, CreatedAt ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "TaskID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "events",
				Indexes: []fireconf.Index{
					// ListByTask: TaskID ASC, Timestamp ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "TaskID", Order: fireconf.OrderAscending},
							{Path: "Timestamp", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
