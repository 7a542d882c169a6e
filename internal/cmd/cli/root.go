// Package cli contains the Cobra commands of the ledgerdb binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/MikhailWahib/ledgerdb/internal/config"
	"github.com/MikhailWahib/ledgerdb/internal/logging"
)

// NewRoot constructs the root command and registers every subcommand.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerdb",
		Short:         "Inspect and operate ledgerdb account files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file (defaults apply when empty)")
	root.PersistentFlags().String("data-dir", "", "Directory holding the account files (overrides config)")
	root.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error (overrides config)")

	root.AddCommand(
		newTransactCommand(),
		newStatementCommand(),
		newVerifyCommand(),
		newDumpCommand(),
		newRouteCommand(),
	)
	return root
}

// loadConfig resolves config file, LEDGERDB_* variables and flags, in that
// order of precedence from lowest to highest, and sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.FromEnv(cfg)

	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.Init(cmd.ErrOrStderr(), level)
	return cfg, nil
}
