package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-screener/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// SummaryStyle for the line under a report.
	SummaryStyle = lipgloss.NewStyle().Faint(true)

	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)
	BorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	buyStyle   = CellStyle.Foreground(lipgloss.Color("10")).Bold(true)
	sellStyle  = CellStyle.Foreground(lipgloss.Color("9")).Bold(true)
	errorStyle = CellStyle.Foreground(lipgloss.Color("208"))
	quietStyle = CellStyle.Faint(true)
)

// SignalStyle colours a signal cell.
func SignalStyle(signal types.TradeSignal) lipgloss.Style {
	switch signal {
	case types.TradeSignalBuy:
		return buyStyle
	case types.TradeSignalSell:
		return sellStyle
	case types.TradeSignalError, types.TradeSignalInvalidStrategy:
		return errorStyle
	case types.TradeSignalNoData:
		return quietStyle
	default:
		return CellStyle
	}
}

// FormatPriceWithChange formats a price with an arrow for its move since the
// previous refresh.
func FormatPriceWithChange(current, previous float64) string {
	priceStr := fmt.Sprintf("%.4f", current)

	if previous == 0 {
		return priceStr
	}

	if current > previous {
		return priceStr + " ▲"
	} else if current < previous {
		return priceStr + " ▼"
	}

	return priceStr
}
