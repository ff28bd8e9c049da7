package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/prepstack-backend/internal/app"
	"github.com/yungbote/prepstack-backend/internal/data/repos"
	"github.com/yungbote/prepstack-backend/internal/data/tx"
	"github.com/yungbote/prepstack-backend/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load question bundles from a YAML file",
	Example: `  prepstack seed --file questions/coding.yaml
  prepstack seed --file questions/all.yaml --replace`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		replace, _ := cmd.Flags().GetBool("replace")
		if path == "" {
			return fmt.Errorf("--file is required")
		}

		dbService, err := app.OpenDatabase(rt.log, rt.cfg)
		if err != nil {
			return err
		}
		defer dbService.Close()
		gdb := dbService.DB()
		if err := app.Migrate(gdb); err != nil {
			return err
		}

		seeder := services.NewSeedService(rt.log, tx.NewGormTxRunner(gdb), repos.NewItemRepo(gdb, rt.log))
		bundles, err := seeder.LoadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for _, bundle := range bundles {
			report, err := seeder.Apply(cmd.Context(), bundle, replace)
			if err != nil {
				return fmt.Errorf("seed %s: %w", bundle.Category, err)
			}
			rt.log.Info("Seeded category",
				"category", report.Category,
				"upserted", report.Upserted,
				"deleted", report.Deleted,
				"total", report.Total,
			)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "YAML file with one or more category bundles")
	seedCmd.Flags().Bool("replace", false, "Delete existing items in each category before loading")
}
