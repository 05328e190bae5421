// Package banner renders the startup banner.
package banner

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var logo = []string{
	" ██████╗ ███╗   ██╗██████╗  ██████╗  █████╗ ██████╗ ██████╗ ",
	"██╔═══██╗████╗  ██║██╔══██╗██╔═══██╗██╔══██╗██╔══██╗██╔══██╗",
	"██║   ██║██╔██╗ ██║██████╔╝██║   ██║███████║██████╔╝██║  ██║",
	"██║   ██║██║╚██╗██║██╔══██╗██║   ██║██╔══██║██╔══██╗██║  ██║",
	"╚██████╔╝██║ ╚████║██████╔╝╚██████╔╝██║  ██║██║  ██║██████╔╝",
	" ╚═════╝ ╚═╝  ╚═══╝╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ",
}

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB3BA")).
			Bold(true)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Render returns the banner with version on the tagline.
func Render(version string) string {
	tagline := "wallet extension onboarding"
	if version != "" {
		tagline += " · " + version
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		logoStyle.Render(strings.Join(logo, "\n")),
		taglineStyle.Render(tagline),
	) + "\n"
}
