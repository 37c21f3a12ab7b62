/*
main.go - Application entry point

PURPOSE:
  Command line front end of the shift planner.

COMMANDS:
  serve      Run the HTTP API (graceful shutdown on SIGINT/SIGTERM)
  holidays   Print the public holidays of one region and year
  report     Print the monthly stats of a stored plan

CONFIGURATION:
  --config points at a YAML or JSON file. An optional .env file is read
  first and SHIFTPLAN_* environment variables override both, using "__"
  for nesting (SHIFTPLAN_SERVER__PORT=9090).

EXAMPLES:
  shiftplan serve --config config.yaml
  shiftplan holidays --year 2026 --region BY
  shiftplan report --year 2026 --month 1 --db ./data/shiftplan.db

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shahabsali127/shiftplan/config"
	"github.com/shahabsali127/shiftplan/logger"
)

var (
	cfgPath string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:           "shiftplan",
	Short:         "Shift and absence planner",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{Path: cfgPath, EnvFile: envFile})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, component string) *logger.ZerologLogger {
	return logger.NewWithOptions(component, logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}
