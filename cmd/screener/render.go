package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-screener/internal/screener"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unknown output format %q, expected table, json or yaml", s)
	}
}

// writeValue writes v as JSON or YAML. Table output is handled by the caller.
func writeValue(w io.Writer, v any, format outputFormat) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(v)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(v); err != nil {
			return err
		}

		return encoder.Close()
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "format %q is not a serialisation format", format)
	}
}

func writeReport(w io.Writer, report *types.Report, format outputFormat) error {
	if format != formatTable {
		return writeValue(w, report, format)
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n", renderReport(report), SummaryStyle.Render(screener.Summary(report)))

	return err
}

func writePullback(w io.Writer, report *screener.PullbackReport, format outputFormat) error {
	if format != formatTable {
		return writeValue(w, report, format)
	}

	_, err := fmt.Fprintln(w, renderPullback(report))

	return err
}

// renderReport draws one row per symbol with the signal column coloured.
func renderReport(report *types.Report) string {
	headers := []string{"Symbol", "Signal", "Trend", "Cross"}
	for _, t := range report.Indicators {
		headers = append(headers, string(t))
	}

	headers = append(headers, "RSI Trend", "Prev High", "Prev Low", "Week High", "Week Low", "Alert", "Error")

	rows := make([][]string, 0, len(report.Rows))
	signals := make([]types.TradeSignal, 0, len(report.Rows))

	for _, row := range report.Rows {
		cells := []string{row.Symbol, string(row.Signal), string(row.Trend), string(row.Cross)}

		for _, t := range report.Indicators {
			v, ok := row.Values[t]
			if !ok {
				v = math.NaN()
			}

			cells = append(cells, formatValue(v))
		}

		if row.Failed() {
			cells = append(cells, "", "", "", "", "")
		} else {
			cells = append(cells,
				string(row.Extras.RSITrend),
				formatValue(row.Extras.PrevHigh),
				formatValue(row.Extras.PrevLow),
				formatValue(row.Extras.WeekHigh),
				formatValue(row.Extras.WeekLow),
			)
		}

		cells = append(cells, formatBool(row.Alerted), row.Error)

		rows = append(rows, cells)
		signals = append(signals, row.Signal)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(BorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}

			if col == 1 && row >= 0 && row < len(signals) {
				return SignalStyle(signals[row])
			}

			return CellStyle
		}).
		String()
}

func renderPullback(report *screener.PullbackReport) string {
	headers := []string{
		"Symbol",
		fmt.Sprintf("Trend (%s)", report.SetupInterval),
		"Latest Setup",
		"Setup Time",
		fmt.Sprintf("Cross (%s)", report.TrendInterval),
		"Cross Time",
		"Recent Setups",
		"Error",
	}

	rows := make([][]string, 0, len(report.Results))

	for _, r := range report.Results {
		setup, setupTime := string(types.PullbackNone), ""
		if r.LatestSetup.IsSome() {
			latest := r.LatestSetup.Unwrap()
			setup = string(latest.Signal)
			setupTime = latest.Time.Format("2006-01-02 15:04")
		}

		crossTime := ""
		if !r.DailyCrossTime.IsZero() {
			crossTime = r.DailyCrossTime.Format("2006-01-02")
		}

		rows = append(rows, []string{
			r.Symbol,
			string(r.Trend),
			setup,
			setupTime,
			string(r.DailyCross),
			crossTime,
			fmt.Sprintf("%d", len(r.History)),
			r.Error,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(BorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}

			return CellStyle
		}).
		String()
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}

	return fmt.Sprintf("%.4f", v)
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}

	return ""
}
