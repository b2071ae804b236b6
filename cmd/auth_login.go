package cmd

import (
	"github.com/spf13/cobra"
)

// Login-specific flags
var loginScopes []string

// authLoginCmd represents the auth login command.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the cloudlink cloud service",
	Long: `Log in to the cloudlink cloud service using your browser.

This command opens the identity provider's login page in your default
browser and waits for the redirect back. The resulting session and refresh
token are stored in the local secret vault.

Examples:
  cloudlink auth login                 # Standard login
  cloudlink auth login --scope read:runs  # Request an additional scope`,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().StringSliceVar(&loginScopes, "scope", nil, "Additional OAuth scopes to request")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, cleanup, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	created, err := application.provider.CreateSession(ctx, loginScopes)
	if err != nil {
		return err
	}

	authPrint("Logged in as %s (%s)\n", created.Account.Label, created.Account.ID)
	return nil
}
