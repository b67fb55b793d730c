package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thand-io/reader/internal/app"
	"github.com/thand-io/reader/internal/client"
	"github.com/thand-io/reader/internal/config"
	"github.com/thand-io/reader/internal/models"
	"github.com/thand-io/reader/internal/sessions"
)

// Global configuration instance
var cfg *config.Config
var application *app.Application

// Status from the bootstrap that ran before the command
var sessionStatus = sessions.Unauthenticated

// loadConfig loads the configuration based on the --config flag or default locations
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")

	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

func preRunConfigE(cmd *cobra.Command, _ []string) error {
	// Load configuration before any command runs
	var err error
	cfg, err = loadConfig(cmd)

	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// check if verbose flag is set
	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Get the endpoint override from the flag
	endpoint, err := cmd.Flags().GetString("endpoint")
	if err == nil && len(endpoint) > 0 {
		if err := cfg.SetEndpoint(endpoint); err != nil {
			return fmt.Errorf("failed to set endpoint: %w", err)
		}
	}

	application, err = app.New(cfg, app.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("failed to initialise reader: %w", err)
	}

	// Restore the persisted session before any command runs
	sessionStatus = application.Bootstrap(cmd.Context())

	logrus.WithFields(logrus.Fields{
		"status":   sessionStatus,
		"endpoint": cfg.GetEndpoint(),
	}).Debugln("Session bootstrapped")

	return nil
}

// loginPrompt is swapped out in tests where no terminal is attached.
var loginPrompt = promptAndLogin

// promptAndLogin prompts the user if they want to login and handles the login process
func promptAndLogin(cmd *cobra.Command) error {
	fmt.Println()
	fmt.Println(titleStyle.Render("Authentication Required"))
	fmt.Println("No active reader session found.")
	fmt.Println()

	var shouldLogin bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Would you like to login now?").
				Description("Sign in with your reader account email and password").
				Value(&shouldLogin),
		),
	)

	err := form.Run()
	if err != nil {
		return fmt.Errorf("login prompt cancelled: %w", err)
	}

	if !shouldLogin {
		return config.ErrNoActiveSession
	}

	fmt.Println()

	err = runLogin(cmd, []string{})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return nil
}

// requireSession gates commands that need an authenticated user. Without a
// session the user is sent to login first.
func requireSession(cmd *cobra.Command, _ []string) error {
	if application.IsAuthenticated() {
		return nil
	}

	return loginPrompt(cmd)
}

// runAuthenticated runs fn and, when the session expires underneath it,
// routes the user back through login and runs it once more.
func runAuthenticated(cmd *cobra.Command, fn func(cmd *cobra.Command) error) error {
	expired := false
	unsubscribe := application.Store.Subscribe(func(s models.Session) {
		if !s.Valid() {
			expired = true
		}
	})
	defer unsubscribe()

	err := fn(cmd)
	if err == nil || !(expired || errors.Is(err, client.ErrSessionExpired)) {
		return err
	}

	if err := loginPrompt(cmd); err != nil {
		return err
	}

	return fn(cmd)
}

var rootCmd = &cobra.Command{
	Use:   "reader",
	Short: "Reader - magazines, digests and articles in your terminal",
	Long: `Reader signs you in to the reader service and lets you browse the
latest magazines, digests and articles.

Your session is kept between runs. When the service reports that it has
expired you are asked to log in again.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunConfigE,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sessionStatus == sessions.Authenticated {
			return runStatus(cmd, args)
		}
		return loginPrompt(cmd)
	},
}

func init() {

	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.config/reader/config.yaml)")
	// Add the endpoint flag
	rootCmd.PersistentFlags().String("endpoint", "", "Override the reader service URL (e.g., http://localhost:8080)")

}

func GetCommandOptions() *cobra.Command {
	return rootCmd
}
