package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/thand-io/reader/internal/common"
	"github.com/thand-io/reader/internal/models"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a reader account",
	Long:  "Creates a new account with the reader service and signs you in",
	RunE:  runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {

	var registration models.Registration
	var confirm string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&registration.Name).
				Validate(common.ValidateName),
			huh.NewInput().
				Title("Email").
				Value(&registration.Email).
				Validate(common.ValidateEmail),
			huh.NewInput().
				Title("Password").
				Description(fmt.Sprintf("At least %d characters with letters and numbers", common.MinPasswordLength)).
				EchoMode(huh.EchoModePassword).
				Value(&registration.Password).
				Validate(common.ValidatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(s string) error {
					if s != registration.Password {
						return common.ErrPasswordMismatch
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("failed to get registration details: %w", err)
	}

	registration.Name = strings.TrimSpace(registration.Name)
	registration.Email = strings.TrimSpace(registration.Email)

	response, err := application.API.Register(cmd.Context(), registration)
	if err != nil {
		return fmt.Errorf("failed to register: %w", describeError(err))
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Account created!"))
	fmt.Printf("Signed in as %s\n", response.User.GetName())
	fmt.Println()

	return nil
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
