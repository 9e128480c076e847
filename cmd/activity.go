package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/progression"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/ui/theme"
)

var activityCmd = &cobra.Command{
	Use:   "activity <user> <type>",
	Short: "Record an activity",
	Long: `Record an activity for a user. Types: work_project, exercise, learning,
save_expenses, rest, custom, season_completion, milestone.

Custom activities need --xp (and optionally --split).`,
	Args: cobra.ExactArgs(2),
	RunE: runActivity,
}

func init() {
	addActivityFlags(activityCmd)
}

func addActivityFlags(c *cobra.Command) {
	c.Flags().String("desc", "", "Free-text description")
	c.Flags().Int64("xp", -1, "Custom overall XP (replaces the table award)")
	c.Flags().StringToInt64("split", nil, "Custom category split, e.g. engines=100,oxygen=50")
	c.Flags().Int("energy", -1, "Custom energy cost")
	c.Flags().StringToInt64("resource", nil, "Host resource deltas carried on the receipt, e.g. gold=5")
}

// activityRequest builds a request from positional args and flags.
func activityRequest(cmd *cobra.Command, typ string) (progression.ActivityRequest, error) {
	req := progression.ActivityRequest{Type: rewards.ActivityType(typ)}
	req.Description, _ = cmd.Flags().GetString("desc")
	req.ResourceChanges, _ = cmd.Flags().GetStringToInt64("resource")

	if xp, _ := cmd.Flags().GetInt64("xp"); xp >= 0 {
		award := rewards.Award{Overall: xp}
		split, _ := cmd.Flags().GetStringToInt64("split")
		for name, v := range split {
			c := rewards.Category(name)
			if !c.Valid() {
				return req, fmt.Errorf("unknown category %q", name)
			}
			award.Split.Set(c, v)
		}
		req.CustomXP = &award
	}
	if cost, _ := cmd.Flags().GetInt("energy"); cost >= 0 {
		req.EnergyCost = &cost
	}
	return req, nil
}

func runActivity(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	now, err := evalTime(cmd)
	if err != nil {
		return err
	}
	req, err := activityRequest(cmd, args[1])
	if err != nil {
		return err
	}

	receipt, err := rt.engine.RecordActivity(cmd.Context(), args[0], req, now)
	if err != nil {
		var ie *progression.InsufficientEnergyError
		if errors.As(err, &ie) && !wantJSON(cmd) {
			fmt.Println(theme.Bad.Render(fmt.Sprintf("✗ Insufficient energy: need %d, have %d", ie.Required, ie.Current)))
		}
		return err
	}
	if wantJSON(cmd) {
		return printJSON(receipt)
	}
	fmt.Println(renderReceipt(receipt))
	return nil
}
