package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/ui/theme"
)

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Inspect reward tables",
}

var rewardsDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the active reward table as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		table := rewards.DefaultTable()
		if cfg.RewardTable != "" {
			if table, err = rewards.LoadTable(cfg.RewardTable); err != nil {
				return err
			}
		}
		return table.Encode(os.Stdout)
	},
}

var rewardsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a reward table file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rewards.LoadTable(args[0]); err != nil {
			fmt.Println(theme.Bad.Render("✗ " + args[0]))
			return err
		}
		fmt.Println(theme.Good.Render("✓ " + args[0]))
		return nil
	},
}

func init() {
	rewardsCmd.AddCommand(rewardsDumpCmd)
	rewardsCmd.AddCommand(rewardsValidateCmd)
}
