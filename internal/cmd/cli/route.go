package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikhailWahib/ledgerdb/internal/balancer"
)

func newRouteCommand() *cobra.Command {
	var strategy string
	cmd := &cobra.Command{
		Use:   "route <key>...",
		Short: "Show which upstream each request key is routed to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if strategy == "" {
				strategy = cfg.Balancer.Strategy
			}
			s, err := balancer.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			picker, err := balancer.New(s, cfg.Balancer.Upstreams)
			if err != nil {
				return err
			}
			for _, key := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", key, picker.Pick(key))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "", "round-robin|path-hash (overrides config)")
	return cmd
}
