package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/prepstack-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, err := app.OpenDatabase(rt.log, rt.cfg)
		if err != nil {
			return err
		}
		defer dbService.Close()

		if err := app.Migrate(dbService.DB()); err != nil {
			return err
		}
		rt.log.Info("Migrations applied", "driver", dbService.Driver())
		return nil
	},
}
