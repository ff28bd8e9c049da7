package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yungbote/prepstack-backend/internal/app"
	"github.com/yungbote/prepstack-backend/internal/platform/envutil"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

// session is filled by the root PersistentPreRunE so every subcommand shares
// one logger and one config snapshot.
type session struct {
	log *logger.Logger
	cfg app.Config
}

var rt session

var rootCmd = &cobra.Command{
	Use:           "prepstack",
	Short:         "Interview prep quiz backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		log, err := logger.New(envutil.String("LOG_MODE", "development"))
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		rt = session{log: log, cfg: app.LoadConfig(log)}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt.log != nil {
			rt.log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file loaded before reading the environment")
	rootCmd.Flags().String("port", "", "HTTP port (overrides PORT)")
	serveCmd.Flags().String("port", "", "HTTP port (overrides PORT)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
