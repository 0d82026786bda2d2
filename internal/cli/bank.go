package cli

import (
	"fmt"

	"daily-quiz-bot/internal/config"
	"github.com/spf13/cobra"
)

// NewBankCmd loads and validates the configured question bank.
func NewBankCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bank",
		Short: "Validate the question bank and print its size",
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
			bank, err := res.questionBank(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d questions loaded from %s\n", bank.Len(), cfg.Bank.Source)
			return err
		},
	}
}
