package ui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"

	"ledgergrip/internal/ui/views"
)

var errNoProgram = errors.New("program not set")

// PagerOps shows long content in the ov pager
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{program: program}
}

// Show hands the terminal to ov until the operator leaves the pager
func (p *PagerOps) Show(content string) error {
	if p == nil || p.program == nil {
		return errNoProgram
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Give ov time to leave the alternate screen
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// helpContent renders the help pager text from the key map
func helpContent(keys KeyMap) string {
	titles := []string{"Navigation", "Search", "Records", "Other"}
	groups := keys.FullHelp()
	sections := make([]views.HelpSection, 0, len(groups))
	for i, group := range groups {
		title := ""
		if i < len(titles) {
			title = titles[i]
		}
		sections = append(sections, views.HelpSection{Title: title, Bindings: group})
	}
	return views.HelpContent(sections)
}

// openPager shows content in the pager. Without a program, or when the
// pager fails, the content is shown in a popup instead.
func (m *Model) openPager(content string) tea.Cmd {
	program := m.program.Load()
	if program == nil {
		m.state.ShowPopup(content)
		return nil
	}
	pager := m.pager
	return func() tea.Msg {
		program.Send(pauseRenderingMsg{})
		err := pager.Show(content)
		program.Send(resumeRenderingMsg{})
		return pagerMsg{content: content, err: err}
	}
}
