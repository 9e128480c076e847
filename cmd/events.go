package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/store"
	"github.com/abhisek/vitality/internal/ui/theme"
)

var eventsCmd = &cobra.Command{
	Use:   "events <user>",
	Short: "Show a user's activity, tick and transition history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		events, err := rt.engine.History(cmd.Context(), args[0], store.QueryOpts{Kind: kind, Limit: limit})
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(events)
		}
		for _, ev := range events {
			fmt.Printf("%s %s %s\n",
				theme.Hint.Render(ev.Timestamp.Format("2006-01-02 15:04")),
				theme.Label.Render(ev.Kind),
				string(ev.Payload))
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().String("kind", "", "Filter by kind: activity, tick, transition, override")
	eventsCmd.Flags().Int("limit", 50, "Maximum events to show (0 = all)")
}
