package ui

import (
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
	"github.com/charmbracelet/lipgloss"
)

// Theme bundles the colors and pre-computed styles used by the views.
// Styles are created once at startup, not per frame.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	// Styles
	Base        lipgloss.Style
	Selected    lipgloss.Style
	Header      lipgloss.Style
	HeaderName  lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	Notice      lipgloss.Style
	ErrorText   lipgloss.Style
	MutedText   lipgloss.Style
	GroupName   lipgloss.Style
	Indicator   lipgloss.Style
	PanelBorder lipgloss.Style
}

// DefaultTheme builds the standard theme against the given renderer. With a
// non-TTY renderer (tests, pipes) every style degrades to plain text.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FD7FF"},
		Secondary: lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"},
		Muted:     lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"},
		Highlight: lipgloss.AdaptiveColor{Light: "#5F00AF", Dark: "#D7AFFF"},
		Error:     lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"},
	}

	t.Base = r.NewStyle()
	t.Selected = r.NewStyle().Reverse(true).Bold(true)
	t.Header = r.NewStyle().Foreground(t.Muted)
	t.HeaderName = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.StatusBar = r.NewStyle().Foreground(t.Muted)
	t.StatusKey = r.NewStyle().Foreground(t.Secondary)
	t.Notice = r.NewStyle().Foreground(t.Secondary).Bold(true)
	t.ErrorText = r.NewStyle().Foreground(t.Error)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.GroupName = r.NewStyle().Foreground(t.Primary)
	t.Indicator = r.NewStyle().Foreground(t.Secondary)
	t.PanelBorder = r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Muted)

	return t
}

// KindIcon returns the marker drawn before a node name.
func (t Theme) KindIcon(kind model.NodeKind, expanded, leaf bool) string {
	switch kind {
	case model.KindGroup:
		if leaf {
			return "▹"
		}
		if expanded {
			return "▾"
		}
		return "▸"
	case model.KindDataset:
		return "•"
	}
	return "?"
}
