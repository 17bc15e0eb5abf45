// internal/report/summary.go
package report

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/tokenlists/internal/reconcile"
	"github.com/rovshanmuradov/tokenlists/internal/source"
)

// FetchSummary итог команды fetch
type FetchSummary struct {
	Source     string
	ChainID    int64
	Fetch      source.Stats
	Reconcile  reconcile.Stats
	Unresolved int
	Output     string
	Duration   time.Duration
}

// ListSummary итог команд generate/makelist
type ListSummary struct {
	List        string
	Version     string
	Tokens      int
	Checksummed int
	Output      string
}

// DriftRow результат проверки одного списка в ci-check
type DriftRow struct {
	List string
	Err  error
}

type row struct {
	label string
	value string
	style lipgloss.Style
}

func render(title string, rows []row) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.label))
	}
	label := labelStyle.Width(width + labelStyle.GetPaddingRight())

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			label.Render(r.label),
			r.style.Render(r.value)))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func countStyle(n int, nonZero lipgloss.Style) lipgloss.Style {
	if n == 0 {
		return valueStyle
	}
	return nonZero
}

// RenderFetch рисует сводку по запуску fetch
func RenderFetch(s FetchSummary) string {
	rs := s.Reconcile
	rows := []row{
		{"Source", fmt.Sprintf("%s (chain %d)", s.Source, s.ChainID), valueStyle},
		{"Raw entries", fmt.Sprint(s.Fetch.Raw), valueStyle},
		{"Malformed", fmt.Sprint(s.Fetch.Malformed), countStyle(s.Fetch.Malformed, warnStyle)},
		{"Excluded", fmt.Sprint(s.Fetch.Excluded), countStyle(s.Fetch.Excluded, warnStyle)},
		{"Wrong chain", fmt.Sprint(s.Fetch.WrongChain), countStyle(s.Fetch.WrongChain, warnStyle)},
		{"Candidates", fmt.Sprint(s.Fetch.Candidates), valueStyle},
		{"Unresolved contracts", fmt.Sprint(s.Unresolved), countStyle(s.Unresolved, warnStyle)},
		{"Dropped: bad address", fmt.Sprint(rs.BadAddress), countStyle(rs.BadAddress, warnStyle)},
		{"Dropped: duplicate", fmt.Sprint(rs.Duplicate), countStyle(rs.Duplicate, warnStyle)},
		{"Dropped: invalid", fmt.Sprint(rs.InvalidNameOrSymbol), countStyle(rs.InvalidNameOrSymbol, warnStyle)},
		{"Mismatch: decimals", fmt.Sprint(rs.Mismatches.Decimals), valueStyle},
		{"Mismatch: name", fmt.Sprint(rs.Mismatches.Name), valueStyle},
		{"Mismatch: symbol", fmt.Sprint(rs.Mismatches.Symbol), valueStyle},
		{"Written", fmt.Sprintf("%d tokens -> %s", rs.Output, s.Output), goodStyle},
		{"Duration", s.Duration.Round(time.Millisecond).String(), valueStyle},
	}
	return render("Token list fetched", rows)
}

// RenderList рисует сводку по собранному списку
func RenderList(s ListSummary) string {
	rows := []row{
		{"List", s.List, valueStyle},
		{"Version", s.Version, goodStyle},
		{"Tokens", fmt.Sprint(s.Tokens), valueStyle},
		{"Checksummed addresses", fmt.Sprint(s.Checksummed), valueStyle},
		{"Written", s.Output, goodStyle},
	}
	return render("Token list generated", rows)
}

// RenderDrift рисует результат ci-check
func RenderDrift(rows []DriftRow) string {
	out := make([]row, 0, len(rows))
	failed := 0
	for _, r := range rows {
		if r.Err != nil {
			failed++
			out = append(out, row{r.List, "DRIFT " + r.Err.Error(), errStyle})
			continue
		}
		out = append(out, row{r.List, "ok", goodStyle})
	}
	title := fmt.Sprintf("CI check: %d lists, %d drifted", len(rows), failed)
	return render(title, out)
}
