package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forgeflow/internal/domain/projection"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/wiring"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive kanban board TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("FORGEFLOW_SKIP_BOARD_RUN") == "true" {
			return nil
		}
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		p := tea.NewProgram(newBoardModel(services))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("board run failed: %w", err)
		}
		return services.Workflows.Save()
	},
}

func init() {
	RootCmd.AddCommand(boardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
var failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type boardModel struct {
	services *wiring.AppServices
	table    table.Model
	mission  string
}

func newBoardModel(services *wiring.AppServices) boardModel {
	columns := []table.Column{
		{Title: "Column", Width: 12},
		{Title: "Priority", Width: 8},
		{Title: "Owner", Width: 16},
		{Title: "Progress", Width: 9},
		{Title: "Task", Width: 36},
		{Title: "ID", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	m := boardModel{
		services: services,
		table:    t,
		mission:  services.Mission(),
	}
	m.reload()
	return m
}

func (m *boardModel) reload() {
	board := projection.ComputeBoard(m.services.Workflows.Registry())
	rows := []table.Row{}
	for _, col := range board.Columns {
		for _, t := range col.Tasks {
			p := t.Progress()
			rows = append(rows, table.Row{
				col.Label,
				string(t.Priority),
				t.Owner,
				fmt.Sprintf("%3d%%", p.Percent),
				t.Title,
				t.ID,
			})
		}
	}
	m.table.SetRows(rows)
}

// selectedTaskID reads the id column of the highlighted row.
func (m boardModel) selectedTaskID() (string, bool) {
	row := m.table.SelectedRow()
	if row == nil {
		return "", false
	}
	return row[5], true
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			if id, ok := m.selectedTaskID(); ok {
				m.cycleStatus(id)
				m.reload()
			}
			return m, nil
		case "u":
			if m.services.Workflows.Undo() {
				m.reload()
			}
			return m, nil
		case "r":
			if m.services.Workflows.Redo() {
				m.reload()
			}
			return m, nil
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// cycleStatus advances a node through the lifecycle in board order.
func (m *boardModel) cycleStatus(id string) {
	task, ok := m.services.Workflows.Find(id)
	if !ok {
		return
	}
	order := workflow.AllStatuses()
	next := order[0]
	for i, s := range order {
		if s == task.Status {
			next = order[(i+1)%len(order)]
			break
		}
	}
	m.services.Workflows.SetStatus(id, next)
}

func (m boardModel) View() string {
	header := headerStyle.Render("Forgeflow Board")
	if m.mission != "" {
		header = headerStyle.Render(fmt.Sprintf("Forgeflow Board: %s", m.mission))
	}

	stats := projection.ComputeStats(m.services.Workflows.Registry())
	statusLine := fmt.Sprintf("%s  %s  %s  effectiveness %d%%",
		runningStyle.Render(fmt.Sprintf("%d running", stats.Running)),
		doneStyle.Render(fmt.Sprintf("%d done", stats.Done)),
		failedStyle.Render(fmt.Sprintf("%d failed", stats.Failed)),
		stats.Effectiveness,
	)

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			statusLine,
			m.table.View(),
			"[s] Cycle status  [u] Undo  [r] Redo  [q] Quit",
		),
	) + "\n"
}
