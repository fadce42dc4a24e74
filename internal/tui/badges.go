// internal/tui/badges.go
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// renderProviderBadge returns a Lipgloss-styled badge naming the model provider.
func renderProviderBadge(provider string) string {
	if provider == "" {
		provider = "unknown"
	}
	badgeStyle := lipgloss.NewStyle().Background(lipgloss.Color("229")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
	return badgeStyle.Render("Provider: " + provider)
}

// renderIndexBadge returns a Lipgloss-styled badge with the number of loaded indexes.
func renderIndexBadge(count int) string {
	label := fmt.Sprintf("Indexes: %d", count)
	badgeStyle := lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("0")).Padding(0, 1)
	return badgeStyle.Render(label)
}
