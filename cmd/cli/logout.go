package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !application.IsAuthenticated() {
			fmt.Println(infoStyle.Render("Not logged in"))
			return nil
		}

		if err := application.API.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to logout: %w", err)
		}

		fmt.Println(successStyle.Render("Logged out"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
