package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/arbor/pkg/species"
)

// errPickCancelled is returned when the picker is closed without a choice.
var errPickCancelled = errors.New("no species selected")

// =============================================================================
// SpeciesListModel - Interactive species selection
// =============================================================================

// SpeciesListModel is the bubbletea model for interactive species selection.
type SpeciesListModel struct {
	Species  []species.Species
	Cursor   int
	Selected *species.Species
	Height   int
	Offset   int
}

// NewSpeciesListModel creates a new species list model.
func NewSpeciesListModel(list []species.Species) SpeciesListModel {
	return SpeciesListModel{Species: list, Height: 10}
}

func (m SpeciesListModel) Init() tea.Cmd {
	return nil
}

func (m SpeciesListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Species)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Species) == 0 {
				return m, tea.Quit
			}
			sp := m.Species[m.Cursor]
			m.Selected = &sp
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 3)
	}
	return m, nil
}

func (m SpeciesListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Species"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Species))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		sp := m.Species[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			sp.CommonName,
			sp.ScientificName,
			fmt.Sprintf("%g°", sp.DefaultAngle),
			sp.Axiom,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Species", "Scientific name", "Angle", "Axiom").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorGray).Italic(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Species))))
	return b.String()
}

// pickSpecies lets the user choose a species from the catalogue.
func pickSpecies(ctx context.Context, catalog species.Catalog) (species.Species, error) {
	list, err := catalog.List(ctx)
	if err != nil {
		return species.Species{}, err
	}
	final, err := tea.NewProgram(NewSpeciesListModel(list), tea.WithContext(ctx)).Run()
	if err != nil {
		return species.Species{}, fmt.Errorf("species picker: %w", err)
	}
	if m, ok := final.(SpeciesListModel); ok && m.Selected != nil {
		return *m.Selected, nil
	}
	return species.Species{}, errPickCancelled
}
