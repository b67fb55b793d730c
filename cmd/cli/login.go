package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/thand-io/reader/internal/common"
	"github.com/thand-io/reader/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the reader service",
	Long:  "Prompts for your email and password and stores the session for later commands",
	RunE:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	credentials, err := promptCredentials(email, password)
	if err != nil {
		return err
	}

	fmt.Println(infoStyle.Render("Signing in to " + cfg.GetEndpoint() + "..."))

	response, err := application.API.Login(cmd.Context(), credentials)
	if err != nil {
		return fmt.Errorf("failed to login: %w", describeError(err))
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Login successful!"))
	fmt.Printf("Welcome back, %s\n", response.User.GetName())
	fmt.Println()

	return nil
}

// promptCredentials asks for whatever was not passed as a flag.
func promptCredentials(email string, password string) (models.Credentials, error) {
	email = strings.TrimSpace(email)

	var fields []huh.Field

	if len(email) == 0 {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(common.ValidateEmail))
	} else if err := common.ValidateEmail(email); err != nil {
		return models.Credentials{}, err
	}

	if len(password) == 0 {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(func(s string) error {
				if len(s) == 0 {
					return common.ErrPasswordRequired
				}
				return nil
			}))
	}

	if len(fields) > 0 {
		form := huh.NewForm(huh.NewGroup(fields...))
		if err := form.Run(); err != nil {
			return models.Credentials{}, fmt.Errorf("failed to get credentials: %w", err)
		}
	}

	return models.Credentials{
		Email:    strings.TrimSpace(email),
		Password: password,
	}, nil
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password (prompted when omitted)")

	// Add the command to the root
	rootCmd.AddCommand(loginCmd)
}
