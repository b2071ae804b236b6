package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"cloudlink/internal/oauth"
	"cloudlink/pkg/logging"
)

// Exit codes for CLI commands. These follow common conventions so scripts
// can distinguish auth failures from general errors.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates the OAuth login flow failed.
	ExitCodeAuthFailed = 3
)

var rootDebug bool

// rootCmd represents the base command for the cloudlink application.
var rootCmd = &cobra.Command{
	Use:   "cloudlink",
	Short: "Connect your local environment to the cloudlink cloud service",
	Long: `cloudlink connects your local development environment to the
cloudlink cloud service. It manages authenticated sessions: browser-based
login, secure local credential storage, and transparent token refresh.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if rootDebug {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command. Called from main with
// the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "cloudlink version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	switch {
	case errors.Is(err, oauth.ErrLoginCancelled),
		errors.Is(err, oauth.ErrLoginTimeout),
		errors.Is(err, oauth.ErrLoginInProgress),
		errors.Is(err, oauth.ErrTokenExchangeFailed),
		errors.Is(err, oauth.ErrUserInfoFailed):
		return ExitCodeAuthFailed
	default:
		return ExitCodeError
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(newVersionCmd())
}
