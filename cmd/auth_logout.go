package cmd

import (
	"github.com/spf13/cobra"
)

// authLogoutCmd represents the auth logout command.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Long: `Remove the stored cloudlink session and its refresh token.

This only removes local credentials; it does not end the session at the
identity provider.`,
	RunE: runAuthLogout,
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, cleanup, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions := application.provider.Sessions(ctx, nil)
	if len(sessions) == 0 {
		authPrintln("No stored sessions.")
		return nil
	}

	for _, s := range sessions {
		if err := application.provider.RemoveSession(ctx, s.ID); err != nil {
			return err
		}
		authPrint("Logged out %s\n", s.Account.ID)
	}

	return nil
}
