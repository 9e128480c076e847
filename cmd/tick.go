package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/progression"
)

var tickCmd = &cobra.Command{
	Use:   "tick <user> [daily|weekly|due]",
	Short: "Apply a scheduled tick",
	Long: `Apply a daily or weekly tick for a user. "due" (the default) applies every
tick that is due, weekly first. Ticks already applied are skipped.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTick,
}

func runTick(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	now, err := evalTime(cmd)
	if err != nil {
		return err
	}

	userID := args[0]
	which := "due"
	if len(args) == 2 {
		which = args[1]
	}

	var results []*progression.TickResult
	if which == "due" {
		results, err = rt.engine.CatchUp(cmd.Context(), userID, now)
		if err != nil {
			return err
		}
	} else {
		kind, err := progression.ParseTickKind(which)
		if err != nil {
			return err
		}
		res, err := rt.engine.RunScheduledTick(cmd.Context(), userID, kind, now)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if wantJSON(cmd) {
		return printJSON(results)
	}
	if len(results) == 0 {
		fmt.Println("Nothing due.")
	}
	for _, r := range results {
		fmt.Println(renderTick(r))
	}
	return nil
}
