package commands

import (
	"github.com/spf13/cobra"
)

// NewMeCommand creates the me command
func NewMeCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the user the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := sess.client.Me.Get(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), me)
		},
	}
}
