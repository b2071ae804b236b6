package cmd

import (
	"github.com/spf13/cobra"
)

// authRefreshCmd represents the auth refresh command.
var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Validate and refresh stored sessions",
	Long: `Validate stored sessions against the identity provider.

Sessions with expired access tokens are refreshed transparently when a
refresh token is available; unrecoverable sessions are removed.`,
	RunE: runAuthRefresh,
}

func runAuthRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, cleanup, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := application.provider.Refresh(ctx); err != nil {
		return err
	}

	sessions := application.provider.Sessions(ctx, nil)
	if len(sessions) == 0 {
		authPrintln("No valid sessions remain. Run 'cloudlink auth login' to authenticate.")
		return nil
	}

	authPrint("%d session(s) valid.\n", len(sessions))
	return nil
}
