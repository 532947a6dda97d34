package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/go-arrower/mirrorhub"
	"github.com/go-arrower/mirrorhub/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "migrate",
		Short:                 "Migrate the database schema to the latest version",
		Long:                  `Serve migrates on start as well. Use migrate to update the schema ahead of a deployment.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := mirrorhub.LoadConfig(configFile(cmd))
			if err != nil {
				return err //nolint:wrapcheck // already descriptive
			}

			if conf.Storage.Driver != mirrorhub.PostgresStorage {
				fmt.Fprintf(cmd.OutOrStdout(), "storage %s has no schema, nothing to migrate\n", conf.Storage.Driver)

				return nil
			}

			pg, err := postgres.ConnectAndMigrate(cmd.Context(), conf.Postgres.Config(), noop.NewTracerProvider())
			if err != nil {
				return fmt.Errorf("could not migrate: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "database %s is migrated\n", conf.Postgres.Database)

			return pg.Shutdown(cmd.Context()) //nolint:wrapcheck // already descriptive
		},
	}
}
