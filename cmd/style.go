package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/pve-planner/pvescrape/pkg/image"
)

// Style definitions
var (
	// Color profile detection
	profile = colorprofile.Detect(os.Stdout, os.Environ())

	colorful = profile == colorprofile.TrueColor || profile == colorprofile.ANSI256

	headerStyle = func() lipgloss.Style {
		if colorful {
			return lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))
		}
		return lipgloss.NewStyle().Bold(true)
	}()

	pendingStyle = func() lipgloss.Style {
		if colorful {
			return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		}
		return lipgloss.NewStyle()
	}()

	successStyle = func() lipgloss.Style {
		if colorful {
			return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		}
		return lipgloss.NewStyle()
	}()

	failureStyle = func() lipgloss.Style {
		if colorful {
			return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		}
		return lipgloss.NewStyle()
	}()
)

// progressPrinter prints scrape progress as a nested list.
type progressPrinter struct {
	w io.Writer
}

func (p *progressPrinter) Category(typ image.Type) {
	fmt.Fprintf(p.w, "- %s\n", typ)
}

func (p *progressPrinter) Entry(name string) {
	fmt.Fprintf(p.w, "  - %s\n", name)
}
