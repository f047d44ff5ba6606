package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// matchCmd previews resource matching without touching any records.
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Preview resource matching between the two environments",
	Long: `Match fetches the resource sets of both environments and reports which
master resources map to which local resources, and which remain unmatched.
No unavailability records are read or written.`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file with resource matching rules")
}

func runMatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	matcher, err := buildMatcher()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	master, err := cfg.Master.client().ListResources(ctx)
	if err != nil {
		return err
	}
	local, err := cfg.Local.client().ListResources(ctx)
	if err != nil {
		return err
	}

	result := matcher.Match(master, local)

	out := cmd.OutOrStdout()
	for _, pair := range result.Pairs {
		fmt.Fprintf(out, "%s -> %s\n", pair.MasterID, pair.LocalID)
	}
	for _, id := range result.Unmatched {
		fmt.Fprintf(out, "%s -> (unmatched)\n", id)
	}
	fmt.Fprintf(out, "matched %d of %d resources\n",
		result.Matched(), result.Matched()+len(result.Unmatched))

	return nil
}
