package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// authStatusCmd represents the auth status command.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored session status",
	Long: `Show the sessions currently stored in the local secret vault.

Sessions are listed as-is; run 'cloudlink auth refresh' to validate them
against the identity provider first.`,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, cleanup, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions := application.provider.Sessions(ctx, nil)
	if len(sessions) == 0 {
		authPrintln("Not logged in. Run 'cloudlink auth login' to authenticate.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Account", "Name", "Session ID", "Scopes"})
	for _, s := range sessions {
		t.AppendRow(table.Row{s.Account.ID, s.Account.Label, s.ID, formatScopes(s.Scopes)})
	}
	t.SetStyle(table.StyleLight)
	t.Render()

	return nil
}
