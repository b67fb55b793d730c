package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/thand-io/reader/internal/models"
)

var (
	bannerErrorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#EF4444")).
				Padding(0, 1)

	bannerInfoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	bannerDetailStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280")).
				MarginLeft(1)
)

// Terminal renders notifications as a one line banner, the CLI's toast.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Notify(n models.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, Render(n))
}

// Render formats a notification the way the terminal banner prints it.
func Render(n models.Notification) string {
	style := bannerInfoStyle
	if n.Kind == models.NotificationError {
		style = bannerErrorStyle
	}

	line := style.Render(n.Title)
	if len(n.Detail) > 0 {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, bannerDetailStyle.Render(n.Detail))
	}
	return line
}
