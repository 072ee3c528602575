package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func integrationPath(op string) string {
	return fmt.Sprintf("/api/v1/integration/%s/%s", cfg.Platform, op)
}

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <player-uuid> <handle>",
		Short: "Start a link verification for a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"uuid":   args[0],
				"handle": args[1],
			}

			var result StatusResult
			if err := client.Post(integrationPath("link"), body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSignalCmd() *cobra.Command {
	var deny bool

	cmd := &cobra.Command{
		Use:   "signal <handle>",
		Short: "Deliver a confirmation signal for a handle",
		Long: `Deliver the platform-side answer for a pending verification, the way a
gateway would after the user replied or reacted. Confirms unless --deny is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"handle":   args[0],
				"accepted": !deny,
			}

			var result StatusResult
			if err := client.Post(integrationPath("signal"), body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&deny, "deny", false, "Deliver a rejection instead of a confirmation")
	return cmd
}

func newPlayerOpCmd(op, short string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <player-uuid>", op),
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"uuid": args[0]}

			var result StatusResult
			if err := client.Post(integrationPath(op), body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newReloadCmd() *cobra.Command {
	return newPlayerOpCmd("reload", "Force a group reconciliation for a linked player")
}

func newUnlinkCmd() *cobra.Command {
	return newPlayerOpCmd("unlink", "Remove a player's link on a platform")
}

func newCancelCmd() *cobra.Command {
	return newPlayerOpCmd("cancel", "Cancel a player's pending verification")
}
