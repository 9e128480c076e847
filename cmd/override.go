package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/rewards"
)

var overrideCmd = &cobra.Command{
	Use:   "override <user>",
	Short: "Set XP totals directly (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var o ledger.Override
		if cmd.Flags().Changed("overall") {
			v, _ := cmd.Flags().GetInt64("overall")
			o.Overall = &v
		}
		cats, _ := cmd.Flags().GetStringToInt64("category")
		for name, v := range cats {
			if o.Categories == nil {
				o.Categories = make(map[rewards.Category]int64)
			}
			o.Categories[rewards.Category(name)] = v
		}
		if o.Empty() {
			return errors.New("nothing to override: pass --overall and/or --category")
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		now, err := evalTime(cmd)
		if err != nil {
			return err
		}

		snap, err := rt.engine.AdminOverride(cmd.Context(), args[0], o, now)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(snap)
		}
		fmt.Println(renderSnapshot(snap))
		return nil
	},
}

func init() {
	overrideCmd.Flags().Int64("overall", 0, "New overall XP")
	overrideCmd.Flags().StringToInt64("category", nil, "New category XP, e.g. engines=4500")
}
