package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/pipeline"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listHiddenStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [features]",
		Short: "Browse the computed layout of a feature file",
		Long: `Browse the computed layout of a feature file in the terminal: one row per
feature with its ring radius, angular extent and label sector.

Keys: ↑/↓ or j/k move, enter shows details, v hides invisible enzymes, q quits.
--plain prints the table once instead.`,
		Args: cobra.ExactArgs(1),
	}
	lf := addLayoutFlags(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "print the table and exit")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts := c.baseOptions()
		opts.Path = args[0]
		opts.Formats = []string{pipeline.FormatJSON}
		lf.apply(cmd, &opts.Layout)

		runner, err := c.newRunner(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer runner.Close()

		result, err := runner.Execute(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("layout %s: %w", opts.Path, err)
		}

		m := NewFeatureListModel(result.Name, result.Layout)
		if plain {
			m.Height = len(m.Layout.Results)
			fmt.Fprintln(stdout, m.View())
			return nil
		}
		_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
		return err
	}
	return cmd
}

// =============================================================================
// FeatureListModel - Interactive feature browser
// =============================================================================

// FeatureListModel is the bubbletea model of the inspect command.
type FeatureListModel struct {
	Name   string
	Layout layout.Layout

	Cursor      int
	Offset      int
	Height      int
	Detail      bool
	VisibleOnly bool

	rows []int // indices into Layout.Results
}

// NewFeatureListModel creates a browser over l.
func NewFeatureListModel(name string, l layout.Layout) FeatureListModel {
	m := FeatureListModel{Name: name, Layout: l, Height: 15}
	m.filter()
	return m
}

func (m *FeatureListModel) filter() {
	rows := make([]int, 0, len(m.Layout.Results))
	for i, r := range m.Layout.Results {
		if m.VisibleOnly && !r.Visible {
			continue
		}
		rows = append(rows, i)
	}
	m.rows = rows
	m.Cursor = min(m.Cursor, max(len(m.rows)-1, 0))
	m.Offset = min(m.Offset, m.Cursor)
}

// Selected returns the result under the cursor.
func (m FeatureListModel) Selected() (layout.Result, bool) {
	if len(m.rows) == 0 {
		return layout.Result{}, false
	}
	return m.Layout.Results[m.rows[m.Cursor]], true
}

func (m FeatureListModel) Init() tea.Cmd {
	return nil
}

func (m FeatureListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.rows)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		case "enter":
			m.Detail = !m.Detail
		case "v":
			m.VisibleOnly = !m.VisibleOnly
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

func (m FeatureListModel) View() string {
	var b strings.Builder

	title := m.Name
	if title == "" {
		title = "Features"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d bp · %d features · %d rings",
		m.Layout.Length, len(m.Layout.Results), m.Layout.Stats.Resolution.Rings)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  v visible only  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Layout.Results[m.rows[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		label := "—"
		if r.Label != nil {
			label = fmt.Sprintf("%d", r.Label.Sector)
		}
		rows = append(rows, []string{
			cursor,
			r.Name,
			r.Type,
			fmt.Sprintf("%d..%d", r.Start, r.End),
			fmt.Sprintf("%.0f", r.Radius),
			fmt.Sprintf("%.1f°", r.SizeDegrees),
			label,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Feature", "Type", "Span", "Radius", "Extent", "Sector").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case !m.Layout.Results[m.rows[idx]].Visible:
				return listHiddenStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.rows)), len(m.rows))))

	if r, ok := m.Selected(); ok && m.Detail {
		b.WriteString("\n\n")
		b.WriteString(m.detailView(r))
	}
	return b.String()
}

func (m FeatureListModel) detailView(r layout.Result) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Width(12).Render(key))
		b.WriteString(StyleValue.Render(value))
		b.WriteString("\n")
	}

	direction := "counter-clockwise"
	if r.Clockwise {
		direction = "clockwise"
	}
	line("Feature", r.Name)
	line("Span", fmt.Sprintf("%d..%d (%s)", r.Start, r.End, direction))
	line("Angles", fmt.Sprintf("%.1f° → %.1f°", r.StartDegrees, r.EndDegrees))
	line("Ring", fmt.Sprintf("%.0f px (baseline %.0f)", r.Radius, m.Layout.PlasmidRadius))
	if r.Enzyme {
		line("Cuts", fmt.Sprintf("%d site(s), cut after %d", r.CutCount, r.Cut))
	}
	if !r.Visible {
		line("Visible", "no")
	}
	if r.Label != nil {
		line("Label", fmt.Sprintf("sector %d, %s, offset %.0f", r.Label.Sector, r.Label.Anchor, r.Label.Offset))
	}
	return strings.TrimRight(b.String(), "\n")
}
