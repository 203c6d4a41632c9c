package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-screener/internal/screener"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

// Application states.
const (
	StateStrategySelect = iota
	StateSymbolInput
	StateIntervalSelect
	StateDataDisplay
)

// ScanFunc runs one scan. It matches (*screener.Screener).Run.
type ScanFunc func(ctx context.Context, req screener.Request) (*types.Report, error)

// Model is the Bubble Tea model of the watch command.
type Model struct {
	state        int
	strategyList list.Model
	symbolInput  textinput.Model
	intervalList list.Model
	dataTable    table.Model
	report       *types.Report
	prevPrices   map[string]float64
	strategy     types.StrategyName
	symbols      []string
	interval     string
	lastUpdate   time.Time
	scanning     bool
	err          error
	width        int
	height       int

	scan    ScanFunc
	refresh time.Duration
	// generation invalidates scans and refreshes of a previous session.
	generation int
	cancel     context.CancelFunc
}

// NewModel creates a Model that scans with scan every refresh.
func NewModel(scan ScanFunc, refresh time.Duration) Model {
	return Model{
		state:        StateStrategySelect,
		strategyList: NewStrategyList(),
		symbolInput:  NewSymbolInput(),
		intervalList: NewIntervalList(),
		dataTable:    NewDataTable(),
		prevPrices:   make(map[string]float64),
		scan:         scan,
		refresh:      refresh,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.stop()
			return m, tea.Quit
		case "q":
			// Only quit on 'q' if not in text input mode
			if m.state != StateSymbolInput {
				m.stop()
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.strategyList.SetSize(msg.Width, msg.Height-4)
		m.intervalList.SetSize(msg.Width, msg.Height-4)
		m.dataTable.SetWidth(msg.Width)
		m.dataTable.SetHeight(msg.Height - 8)
		return m, nil

	case ReportMsg:
		if msg.Generation != m.generation {
			return m, nil
		}

		m.scanning = false
		m.err = nil

		if m.report != nil {
			for _, row := range m.report.Rows {
				if c, ok := lastClose(m.report, row.Symbol); ok {
					m.prevPrices[row.Symbol] = c
				}
			}
		}

		m.report = msg.Report
		m.lastUpdate = msg.Report.FinishedAt
		m.dataTable = UpdateTableRows(m.dataTable, m.report, m.prevPrices)
		return m, m.scheduleRefresh()

	case ScanErrorMsg:
		if msg.Generation != m.generation {
			return m, nil
		}

		m.scanning = false
		m.err = msg.Err
		return m, m.scheduleRefresh()

	case RefreshMsg:
		if msg.Generation != m.generation || m.state != StateDataDisplay {
			return m, nil
		}

		cmd := m.startScan()
		return m, cmd
	}

	// Delegate to state-specific update
	switch m.state {
	case StateStrategySelect:
		return m.updateStrategySelect(msg)
	case StateSymbolInput:
		return m.updateSymbolInput(msg)
	case StateIntervalSelect:
		return m.updateIntervalSelect(msg)
	case StateDataDisplay:
		return m.updateDataDisplay(msg)
	}

	return m, nil
}

func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateSymbolInput:
		m.state = StateStrategySelect
	case StateIntervalSelect:
		m.state = StateSymbolInput
		m.symbolInput.Focus()
	case StateDataDisplay:
		// Stop scanning and clear the watched symbols
		m.stop()
		m.generation++
		m.report = nil
		m.prevPrices = make(map[string]float64)
		m.symbols = nil
		m.interval = ""
		m.err = nil
		m.scanning = false
		m.symbolInput.Reset()
		m.symbolInput.Focus()
		m.state = StateSymbolInput
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateStrategySelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		if item, ok := m.strategyList.SelectedItem().(listItem); ok {
			m.strategy = types.StrategyName(item.name)
			m.state = StateSymbolInput
			m.symbolInput.Focus()
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.strategyList, cmd = m.strategyList.Update(msg)
	return m, cmd
}

func (m Model) updateSymbolInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		symbols := ParseSymbols(m.symbolInput.Value())
		if len(symbols) > 0 {
			m.symbols = symbols
			m.state = StateIntervalSelect
			m.symbolInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.symbolInput, cmd = m.symbolInput.Update(msg)
	return m, cmd
}

func (m Model) updateIntervalSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		if item, ok := m.intervalList.SelectedItem().(listItem); ok {
			m.interval = item.name
			m.state = StateDataDisplay
			m.generation++
			cmd := m.startScan()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.intervalList, cmd = m.intervalList.Update(msg)
	return m, cmd
}

func (m Model) updateDataDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.dataTable, cmd = m.dataTable.Update(msg)
	return m, cmd
}

func (m Model) request() screener.Request {
	req := screener.Request{
		Symbols:  m.symbols,
		Strategy: m.strategy,
	}

	if m.interval != "" && m.interval != "default" {
		req.Interval = marketdata.Interval(m.interval)
	}

	return req
}

// startScan returns a command that runs one scan for the current session.
func (m *Model) startScan() tea.Cmd {
	if m.scan == nil {
		return nil
	}

	m.stop()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.scanning = true

	scan, req, generation := m.scan, m.request(), m.generation

	return func() tea.Msg {
		report, err := scan(ctx, req)
		if err != nil {
			return ScanErrorMsg{Err: err, Generation: generation}
		}

		return ReportMsg{Report: report, Generation: generation}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}

	generation := m.generation

	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return RefreshMsg{Generation: generation}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateStrategySelect:
		s.WriteString(TitleStyle.Render("Argo Screener - Watch"))
		s.WriteString("\n\n")
		s.WriteString(m.strategyList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, q to quit"))

	case StateSymbolInput:
		s.WriteString(TitleStyle.Render("Enter Symbols"))
		s.WriteString("\n\n")
		s.WriteString("Enter comma-separated symbols (e.g., AAPL,BTC-USD,EURUSD=X):\n\n")
		s.WriteString(m.symbolInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, Esc to go back"))

	case StateIntervalSelect:
		s.WriteString(TitleStyle.Render("Select Interval"))
		s.WriteString("\n\n")
		s.WriteString(m.intervalList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StateDataDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Screener - %s (%s)", m.strategy, m.interval)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if m.report == nil {
			s.WriteString("Scanning...\n")
		} else {
			s.WriteString(m.dataTable.View())
			s.WriteString("\n")
			s.WriteString(SummaryStyle.Render(screener.Summary(m.report)))
			s.WriteString("\n")
		}

		status := fmt.Sprintf("q: quit | Esc: back | Watching: %s", strings.Join(m.symbols, ", "))
		if !m.lastUpdate.IsZero() {
			status += " | Updated " + m.lastUpdate.Format("15:04:05")
		}

		if m.scanning && m.report != nil {
			status += " | refreshing"
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(status))
	}

	return s.String()
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Interactive screener that refreshes on a timer",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "refresh",
				Usage: "Time between scans",
				Value: time.Minute,
			},
			&cli.BoolFlag{
				Name:  "no-alerts",
				Usage: "Do not send alerts",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := setup(ctx, cmd, !cmd.Bool("no-alerts"))
			if err != nil {
				return err
			}
			defer env.Close()

			s, err := env.screener(true)
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(NewModel(s.Run, cmd.Duration("refresh")), tea.WithAltScreen(), tea.WithContext(ctx)).Run()

			return err
		},
	}
}
