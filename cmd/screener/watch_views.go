package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
)

// listItem implements list.Item for the strategy and interval lists.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

func newSelectList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewStrategyList creates the strategy selection list.
func NewStrategyList() list.Model {
	descriptions := map[types.StrategyName]string{
		types.StrategyScalping: "EMA8/EMA21, RSI inside 40-60, 5m bars over 7d",
		types.StrategySwing:    "EMA50/EMA200, RSI inside 30-70, 1h bars over 30d",
	}

	items := make([]list.Item, 0, len(descriptions))
	for _, name := range types.StrategyNames() {
		items = append(items, listItem{name: string(name), description: descriptions[name]})
	}

	return newSelectList("Select Strategy", items)
}

// NewIntervalList creates the interval selection list. The first entry keeps
// the strategy's own interval.
func NewIntervalList() list.Model {
	items := []list.Item{
		listItem{name: "default", description: "Strategy interval and period"},
	}

	for _, interval := range marketdata.Intervals() {
		items = append(items, listItem{name: string(interval), description: fmt.Sprintf("%s candles", interval)})
	}

	return newSelectList("Select Interval", items)
}

// NewSymbolInput creates the text input for symbol entry.
func NewSymbolInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "AAPL,BTC-USD,EURUSD=X"
	ti.Focus()
	ti.CharLimit = 400
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

// ParseSymbols parses comma-separated symbols into a slice.
func ParseSymbols(input string) []string {
	parts := strings.Split(input, ",")
	symbols := make([]string, 0, len(parts))

	for _, p := range parts {
		s := strings.TrimSpace(strings.ToUpper(p))
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}

// NewDataTable creates the table of screener rows.
func NewDataTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 12},
		{Title: "Signal", Width: 16},
		{Title: "Price", Width: 16},
		{Title: "Trend", Width: 10},
		{Title: "Cross", Width: 13},
		{Title: "RSI", Width: 8},
		{Title: "MACD", Width: 10},
		{Title: "ATR", Width: 10},
		{Title: "Bar", Width: 17},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// lastClose returns the close of the last bar kept for symbol.
func lastClose(report *types.Report, symbol string) (float64, bool) {
	if report == nil {
		return 0, false
	}

	series, ok := report.Series[symbol]
	if !ok || series.IsEmpty() {
		return 0, false
	}

	return series.Bars[series.Len()-1].Close, true
}

// UpdateTableRows fills the table from report in symbol order. prevPrices
// holds the closes of the previous refresh.
func UpdateTableRows(t table.Model, report *types.Report, prevPrices map[string]float64) table.Model {
	rows := make([]table.Row, 0, len(report.Rows))

	for _, row := range report.Rows {
		signal := string(row.Signal)
		if row.Alerted {
			signal += " *"
		}

		price := "-"
		if c, ok := lastClose(report, row.Symbol); ok {
			price = FormatPriceWithChange(c, prevPrices[row.Symbol])
		}

		bar := ""
		if !row.BarTime.IsZero() {
			bar = row.BarTime.Format("01-02 15:04")
		}

		rows = append(rows, table.Row{
			row.Symbol,
			signal,
			price,
			string(row.Trend),
			string(row.Cross),
			formatCell(row, types.IndicatorTypeRSI, "%.2f"),
			formatCell(row, types.IndicatorTypeMACD, "%.4f"),
			formatCell(row, types.IndicatorTypeATR, "%.4f"),
			bar,
		})
	}

	t.SetRows(rows)

	return t
}

func formatCell(row types.Row, t types.IndicatorType, format string) string {
	v, ok := row.Values[t]
	if !ok {
		return "-"
	}

	if s := formatValue(v); s == "-" {
		return s
	}

	return fmt.Sprintf(format, v)
}
