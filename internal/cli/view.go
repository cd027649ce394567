package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/layout"
	"github.com/matzehuels/boxlens/pkg/pipeline"
	"github.com/matzehuels/boxlens/pkg/session"
)

// viewCommand creates the interactive previewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		flags  renderFlags
		export string
	)

	cmd := &cobra.Command{
		Use:   "view <image|data-url> <layout.json>",
		Short: "Preview an overlay interactively in the terminal",
		Long: `Preview an overlay interactively in the terminal.

Keys:
  l  toggle labels        s  toggle section outlines
  c  toggle type colors   e  export PNG
  r  reload both files    q  quit`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.RenderOptions()
			flags.apply(cmd, &opts)
			if export == "" {
				export = basePath("", args[0]) + ".png"
			}
			return c.runView(cmd.Context(), args[0], args[1], export, opts)
		},
	}

	flags.register(cmd, DefaultConfig().RenderOptions())
	cmd.Flags().StringVarP(&export, "output", "o", "", "export path for 'e' (default: <image>.overlay.png)")

	return cmd
}

func (c *CLI) runView(ctx context.Context, imagePath, layoutPath, export string, opts pipeline.Options) error {
	ctrl := session.New()
	if err := ctrl.SetOptions(opts); err != nil {
		return err
	}
	c.Logger.Debug("starting previewer", "session", ctrl.ID, "image", displayName(imagePath), "layout", layoutPath)

	m := newViewModel(ctx, ctrl, imagePath, layoutPath, export)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viewModel); ok && fm.exported != "" {
		printSuccess("Exported overlay")
		printFile(fm.exported)
	}
	return nil
}

// =============================================================================
// viewModel - bubbletea previewer
// =============================================================================

type (
	loadedMsg   struct{ err error }
	renderedMsg struct {
		frame *session.Frame
		err   error
	}
	exportedMsg struct {
		path string
		err  error
	}
)

// sidebarWidth is the width reserved next to the preview.
const sidebarWidth = 30

var (
	viewPanelStyle = lipgloss.NewStyle().PaddingLeft(2)
	viewKeyStyle   = lipgloss.NewStyle().Foreground(colorCyan)
)

type viewModel struct {
	ctx        context.Context
	ctrl       *session.Controller
	imagePath  string
	layoutPath string
	exportPath string

	width, height int
	frame         *session.Frame
	preview       string
	status        string
	err           error
	busy          bool
	exported      string
}

func newViewModel(ctx context.Context, ctrl *session.Controller, imagePath, layoutPath, exportPath string) viewModel {
	return viewModel{
		ctx:        ctx,
		ctrl:       ctrl,
		imagePath:  imagePath,
		layoutPath: layoutPath,
		exportPath: exportPath,
		width:      80,
		height:     24,
		status:     "loading",
		busy:       true,
	}
}

func (m viewModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.refreshPreview()

	case loadedMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			m.status = "load failed"
			return m, nil
		}
		m.status = "rendering"
		return m, m.renderCmd()

	case renderedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.status = "render failed"
			return m, nil
		}
		m.err = nil
		m.frame = msg.frame
		m.status = "ready"
		m.refreshPreview()

	case exportedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "export failed"
			return m, nil
		}
		m.err = nil
		m.exported = msg.path
		m.status = "exported " + msg.path
	}
	return m, nil
}

func (m viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "l", "s", "c":
		opts := m.ctrl.Options()
		switch msg.String() {
		case "l":
			opts.ShowLabels = !opts.ShowLabels
		case "s":
			opts.ShowSections = !opts.ShowSections
		case "c":
			opts.ColorByType = !opts.ColorByType
		}
		if err := m.ctrl.SetOptions(opts); err != nil {
			m.err = err
			return m, nil
		}
		m.busy = true
		m.status = "rendering"
		return m, m.renderCmd()
	case "r":
		m.busy = true
		m.status = "reloading"
		return m, m.loadCmd()
	case "e":
		if m.frame == nil {
			m.status = "nothing to export yet"
			return m, nil
		}
		return m, m.exportCmd()
	}
	return m, nil
}

func (m *viewModel) refreshPreview() {
	if m.frame == nil {
		m.preview = ""
		return
	}
	cols := max(m.width-sidebarWidth-2, 10)
	rows := max(m.height-3, 5)
	m.preview = previewBlocks(m.frame.Image, cols, rows)
}

// =============================================================================
// Commands
// =============================================================================

func (m viewModel) loadCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	imagePath, layoutPath := m.imagePath, m.layoutPath
	return func() tea.Msg {
		layoutData, err := readInput(layoutPath)
		if err != nil {
			return loadedMsg{err}
		}
		doc, err := layout.ReadJSON(bytes.NewReader(layoutData))
		if err != nil {
			return loadedMsg{err}
		}
		imageData, err := readImage(imagePath)
		if err != nil {
			return loadedMsg{err}
		}
		if _, err := ctrl.LoadImage(ctx, imageData); err != nil {
			return loadedMsg{err}
		}
		return loadedMsg{ctrl.SetLayout(doc)}
	}
}

func (m viewModel) renderCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		frame, err := ctrl.Render(ctx, pipeline.FormatPNG)
		return renderedMsg{frame, err}
	}
}

func (m viewModel) exportCmd() tea.Cmd {
	data, path := m.frame.Artifacts[pipeline.FormatPNG], m.exportPath
	return func() tea.Msg {
		if err := errors.ValidatePath(path); err != nil {
			return exportedMsg{err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{err: fmt.Errorf("write %s: %w", path, err)}
		}
		return exportedMsg{path: path}
	}
}

// =============================================================================
// View
// =============================================================================

func (m viewModel) View() string {
	side := m.sidebar()
	body := m.preview
	if body == "" {
		body = StyleDim.Render("(no preview)")
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top, body, viewPanelStyle.Render(side))
	return panes + "\n" + m.statusLine()
}

func (m viewModel) sidebar() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(appName))
	b.WriteString("\n\n")

	opts := m.ctrl.Options()
	b.WriteString(toggleLine("l", "labels", opts.ShowLabels))
	b.WriteString(toggleLine("s", "sections", opts.ShowSections))
	b.WriteString(toggleLine("c", "color by type", opts.ColorByType))
	b.WriteString("\n")

	if m.frame != nil {
		res := m.frame.Overlay
		b.WriteString(StyleDim.Render(fmt.Sprintf("%dx%d px", res.Width, res.Height)))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("scale %.3g × %.3g", res.Scale.X, res.Scale.Y)))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d boxes, %d skipped", len(res.Drawn), res.Skipped)))
		b.WriteString("\n\n")
		for _, e := range res.Legend {
			swatch := lipgloss.NewStyle().Foreground(termColor(rgba(opaque(e.Color)))).Render(iconSwatch)
			b.WriteString(swatch + " " + e.Type + "\n")
		}
		if len(res.Legend) > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString(StyleDim.Render("e export  r reload  q quit"))
	return b.String()
}

func (m viewModel) statusLine() string {
	if m.err != nil {
		return StyleError.Render(iconError + " " + errors.UserMessage(m.err))
	}
	status := m.status
	if m.busy {
		status += "…"
	}
	return StyleDim.Render(status)
}

func toggleLine(key, label string, on bool) string {
	box := "[ ]"
	if on {
		box = "[x]"
	}
	return viewKeyStyle.Render(key) + " " + box + " " + label + "\n"
}
