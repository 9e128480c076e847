package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/ui/theme"
)

var previewCmd = &cobra.Command{
	Use:   "preview <user> <type>",
	Short: "Show what an activity would earn without recording it",
	Args:  cobra.ExactArgs(2),
	RunE:  runPreview,
}

func init() {
	addActivityFlags(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
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

	p, err := rt.engine.Preview(cmd.Context(), args[0], req, now)
	if err != nil {
		return err
	}
	if wantJSON(cmd) {
		return printJSON(p)
	}

	fmt.Println(theme.Title.Render(p.ActivityType.DisplayName()))
	fmt.Println(row("XP", fmt.Sprintf("%d  (base %d, x%.2f)", p.Reward.Overall, p.Base.Overall, p.Multipliers.Combined())))
	fmt.Println(row("Energy", fmt.Sprintf("%d of %d", p.EnergyCost, p.CurrentEnergy)))
	switch {
	case p.Blocked:
		fmt.Println(theme.Bad.Render("Blocked by burnout"))
	case !p.Affordable:
		fmt.Println(theme.Bad.Render("Insufficient energy"))
	default:
		fmt.Println(theme.Good.Render("Affordable"))
	}
	return nil
}
