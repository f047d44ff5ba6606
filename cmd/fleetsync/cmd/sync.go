package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dispatchware/fleetsync/pkg/constants"
	"github.com/dispatchware/fleetsync/pkg/logging"
	"github.com/dispatchware/fleetsync/pkg/match"
	"github.com/dispatchware/fleetsync/pkg/sync"
)

var (
	syncYear   int
	syncDryRun bool
	rulesFile  string
)

// syncCmd runs a full reconciliation of the local environment to the master.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync unavailabilities from the master to the local environment",
	Long: `Sync fetches the resource sets of both environments, matches them, and
converges each matched resource's unavailability records on the local side
to the master's, scoped to the target calendar year.

Individual resource or action failures are counted and logged but never
abort the run. Use --dry-run to see the planned actions without writing.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().IntVar(&syncYear, "year", 0, "target calendar year (default: current year)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "compute actions without applying them")
	syncCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file with resource matching rules")
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	matcher, err := buildMatcher()
	if err != nil {
		return err
	}

	opts := []sync.Option{
		sync.WithDryRun(syncDryRun),
		sync.WithMatcher(matcher),
	}
	if syncYear != 0 {
		opts = append(opts, sync.WithYear(syncYear))
	}

	service := sync.New(cfg.Master.client(), cfg.Local.client(), opts...)

	ctx, cancel := context.WithTimeout(cmd.Context(), constants.SyncTimeout)
	defer cancel()

	result, err := service.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	return nil
}

// buildMatcher creates the resource matcher, honoring a --rules file when
// one is given.
func buildMatcher() (*match.Matcher, error) {
	if rulesFile == "" {
		return match.New(), nil
	}

	rules, err := match.LoadRules(rulesFile)
	if err != nil {
		return nil, err
	}
	logging.Debug().Str("path", rulesFile).Msg("Loaded matching rules")
	return match.New(match.WithRules(rules)), nil
}
