package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thand-io/reader/internal/client"
	"github.com/thand-io/reader/internal/models"
)

var magazinesCmd = &cobra.Command{
	Use:     "magazines",
	Short:   "List the available magazines",
	PreRunE: requireSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthenticated(cmd, func(cmd *cobra.Command) error {
			magazines, err := application.API.Magazines(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			printMagazines(cmd.OutOrStdout(), magazines)
			return nil
		})
	},
}

var digestsCmd = &cobra.Command{
	Use:     "digests",
	Short:   "List the latest digests",
	PreRunE: requireSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthenticated(cmd, func(cmd *cobra.Command) error {
			digests, err := application.API.Digests(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			printDigests(cmd.OutOrStdout(), digests)
			return nil
		})
	},
}

var articlesCmd = &cobra.Command{
	Use:     "articles [id]",
	Short:   "List articles or read a single article",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: requireSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthenticated(cmd, func(cmd *cobra.Command) error {
			if len(args) == 1 {
				article, err := application.API.Article(cmd.Context(), args[0])
				if err != nil {
					return describeError(err)
				}
				printArticle(cmd.OutOrStdout(), article)
				return nil
			}

			query := models.ArticleQuery{}
			query.MagazineID, _ = cmd.Flags().GetString("magazine")
			query.DigestID, _ = cmd.Flags().GetString("digest")
			query.Page, _ = cmd.Flags().GetInt("page")
			query.Limit, _ = cmd.Flags().GetInt("limit")

			articles, err := application.API.Articles(cmd.Context(), query)
			if err != nil {
				return describeError(err)
			}
			printArticles(cmd.OutOrStdout(), articles)
			return nil
		})
	},
}

// describeError turns client failures into messages fit for the terminal.
// Session expiry is returned untouched so callers can route to login.
func describeError(err error) error {
	var httpErr *client.HTTPError
	var netErr *client.NetworkError

	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return err
	case errors.As(err, &httpErr):
		message := httpErr.Message()
		if len(message) == 0 {
			message = strings.ToLower(http.StatusText(httpErr.StatusCode))
		}
		return fmt.Errorf("%s (status %d)", message, httpErr.StatusCode)
	case errors.As(err, &netErr):
		return fmt.Errorf("could not reach the reader service: %w", netErr.Err)
	default:
		return err
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateOnly)
}

func printMagazines(w io.Writer, magazines []models.Magazine) {
	fmt.Fprintln(w, headerStyle.Render("Magazines"))
	fmt.Fprintln(w)

	if len(magazines) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No magazines available"))
		return
	}

	for _, m := range magazines {
		title := m.Title
		if len(m.Issue) > 0 {
			title = fmt.Sprintf("%s (%s)", m.Title, m.Issue)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", idStyle.Render(m.ID), title, mutedStyle.Render(formatDate(m.PublishedAt)))
		if len(m.Description) > 0 {
			fmt.Fprintf(w, "    %s\n", mutedStyle.Render(m.Description))
		}
	}
}

func printDigests(w io.Writer, digests []models.Digest) {
	fmt.Fprintln(w, headerStyle.Render("Digests"))
	fmt.Fprintln(w)

	if len(digests) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No digests available"))
		return
	}

	for _, d := range digests {
		fmt.Fprintf(w, "%s  %s  %s  %d articles\n", idStyle.Render(d.ID), d.Title,
			mutedStyle.Render(formatDate(d.PublishedAt)), len(d.ArticleIDs))
		if len(d.Summary) > 0 {
			fmt.Fprintf(w, "    %s\n", mutedStyle.Render(d.Summary))
		}
	}
}

func printArticles(w io.Writer, articles []models.Article) {
	fmt.Fprintln(w, headerStyle.Render("Articles"))
	fmt.Fprintln(w)

	if len(articles) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No articles found"))
		return
	}

	for _, a := range articles {
		line := fmt.Sprintf("%s  %s", idStyle.Render(a.ID), a.Title)
		if len(a.Author) > 0 {
			line += mutedStyle.Render(" by " + a.Author)
		}
		if a.ReadMinutes > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" (%d min)", a.ReadMinutes))
		}
		fmt.Fprintln(w, line)
	}
}

func printArticle(w io.Writer, article *models.Article) {
	fmt.Fprintln(w, titleStyle.Render(article.Title))
	if len(article.Author) > 0 {
		fmt.Fprintf(w, "%s  %s\n", article.Author, mutedStyle.Render(formatDate(article.PublishedAt)))
	}
	fmt.Fprintln(w)

	body := article.Body
	if len(body) == 0 {
		body = article.Summary
	}
	fmt.Fprintln(w, body)
}

func init() {
	articlesCmd.Flags().String("magazine", "", "Only articles from this magazine")
	articlesCmd.Flags().String("digest", "", "Only articles from this digest")
	articlesCmd.Flags().Int("page", 0, "Page number")
	articlesCmd.Flags().Int("limit", 0, "Articles per page")

	rootCmd.AddCommand(magazinesCmd, digestsCmd, articlesCmd)
}
