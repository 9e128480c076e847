package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state [user]",
	Short: "Show a user's state, or list users",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if len(args) == 0 {
			users, err := rt.engine.Users(cmd.Context())
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(users)
			}
			for _, u := range users {
				fmt.Println(u)
			}
			return nil
		}

		now, err := evalTime(cmd)
		if err != nil {
			return err
		}
		snap, err := rt.engine.GetState(cmd.Context(), args[0], now)
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
