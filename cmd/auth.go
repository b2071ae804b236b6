package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cloudlink/internal/config"
)

var (
	authConfigPath string
	authQuiet      bool
)

// authCmd represents the auth command group.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication for cloudlink",
	Long: `Manage authentication for the cloudlink cloud service.

The auth command group provides subcommands to login, logout, check status,
and refresh stored sessions.

Examples:
  cloudlink auth login                 # Browser-based login
  cloudlink auth status                # Show stored sessions
  cloudlink auth refresh               # Re-validate and refresh sessions
  cloudlink auth logout                # Remove the stored session`,
}

// authPrint prints output only if the --quiet flag is not set.
func authPrint(format string, args ...interface{}) {
	if !authQuiet {
		fmt.Printf(format, args...)
	}
}

// authPrintln prints a line only if the --quiet flag is not set.
func authPrintln(a ...interface{}) {
	if !authQuiet {
		fmt.Println(a...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)

	authCmd.PersistentFlags().StringVar(&authConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false, "Suppress non-essential output")
}
