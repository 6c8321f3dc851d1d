package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

const bannerArt = `
 ███████╗███████╗███████╗██╗     ██╗ ██████╗
 ██╔════╝██╔════╝██╔════╝██║     ██║██╔═══██╗
 █████╗  █████╗  █████╗  ██║     ██║██║   ██║
 ██╔══╝  ██╔══╝  ██╔══╝  ██║     ██║██║   ██║
 ██║     ███████╗███████╗███████╗██║╚██████╔╝
 ╚═╝     ╚══════╝╚══════╝╚══════╝╚═╝ ╚═════╝`

// RenderBanner draws the block-letter logo, or spaced capitals when the art
// would not fit in width.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < lipgloss.Width(bannerArt)+2 {
		return style.Render("F E E L I O")
	}
	return style.Render(bannerArt)
}
