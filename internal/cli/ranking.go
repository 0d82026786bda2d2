package cli

import (
	"fmt"
	"time"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/config"
	"github.com/spf13/cobra"
)

// NewRankingCmd prints the current month's leaderboard from the configured
// score store without resetting it.
func NewRankingCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ranking",
		Short: "Print the current leaderboard",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			res, err := openResources(ctx, cfg)
			defer res.closeInto(&err)
			if err != nil {
				return err
			}
			store, err := res.scoreStore()
			if err != nil {
				return err
			}
			ledger := app.NewScoreLedger(store, config.TTLDuration(cfg.Scores.Timeout, 5*time.Second), newLogger())
			if err := ledger.Load(ctx); err != nil {
				return err
			}
			text := app.RankingText(app.Rank(ledger.Snapshot()), func(id string) string { return id })
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}
