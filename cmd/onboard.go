package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard <user>",
	Short: "Create a user's progression state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		now, err := evalTime(cmd)
		if err != nil {
			return err
		}

		snap, err := rt.engine.Onboard(cmd.Context(), args[0], now)
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
