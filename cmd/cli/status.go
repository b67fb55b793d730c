package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/thand-io/reader/internal/common"
	"github.com/thand-io/reader/internal/models"
	"github.com/thand-io/reader/internal/notify"
	"github.com/thand-io/reader/internal/sessions"
)

const recentNotifications = 5

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and recent notifications",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	refresh, _ := cmd.Flags().GetBool("refresh")
	if refresh && application.IsAuthenticated() {
		if _, err := application.API.Profile(cmd.Context()); err != nil {
			return fmt.Errorf("failed to refresh profile: %w", describeError(err))
		}
	}

	printStatus(cmd.OutOrStdout(), cfg.GetEndpoint(), application.Session(),
		application.History.Recent(recentNotifications))

	showMetrics, _ := cmd.Flags().GetBool("metrics")
	if showMetrics {
		return printMetrics(cmd.OutOrStdout(), prometheus.DefaultGatherer)
	}
	return nil
}

func printStatus(w io.Writer, endpoint string, session models.Session, recent []models.Notification) {
	fmt.Fprintln(w, headerStyle.Render("Reader Status"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Endpoint: %s\n", endpoint)

	if session.Valid() {
		fmt.Fprintf(w, "  Session:  %s\n", activeStyle.Render("ACTIVE"))
		fmt.Fprintf(w, "  User:     %s\n", session.User.GetName())
		if session.User != nil && len(session.User.Email) > 0 {
			fmt.Fprintf(w, "  Email:    %s\n", session.User.Email)
		}
		if expiry, ok := sessions.TokenExpiry(session.Token); ok {
			fmt.Fprintf(w, "  Expires:  %s (%s)\n", expiry.Local().Format(time.DateTime),
				common.FormatRemaining(time.Until(expiry)))
		}
	} else {
		fmt.Fprintf(w, "  Session:  %s\n", expiredStyle.Render("SIGNED OUT"))
	}

	if len(recent) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Recent Notifications"))
	for i := len(recent) - 1; i >= 0; i-- {
		n := recent[i]
		fmt.Fprintf(w, "  %s %s\n", n.Time.Local().Format(time.DateTime), notify.Render(n))
	}
}

func init() {
	statusCmd.Flags().Bool("refresh", false, "Fetch the latest profile from the reader service")
	statusCmd.Flags().Bool("metrics", false, "Show request and session metrics for this run")

	rootCmd.AddCommand(statusCmd)
}
