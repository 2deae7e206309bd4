// Package report renders a dashboard Report as markdown, and from there as
// HTML for browsers or styled text for terminals.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"portfoliodash/internal/format"
	"portfoliodash/internal/service"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Emphasis decorates a highlighted (negative) percentage cell.
type Emphasis func(string) string

// Bold marks negative returns in plain markdown.
func Bold(s string) string { return "**" + s + "**" }

// NegativeSpan marks negative returns with a CSS class for HTML output.
func NegativeSpan(s string) string { return `<span class="negative">` + s + `</span>` }

// WriteMarkdown writes the summary line, the aggregate table, the allocation
// series and the detailed holdings.
func WriteMarkdown(w io.Writer, rep *service.Report, em Emphasis) {
	l := rep.Labels
	fmt.Fprintf(w, "# %s\n\n", l.Title)

	if rep.Condition != service.ConditionOK {
		fmt.Fprintf(w, "> %s\n", rep.Message)
		return
	}

	fmt.Fprintf(w, "**%s:** %s | **%s:** %s | **%s:** %s\n\n",
		l.Investment, rep.Summary.Investment,
		l.CurrentValue, rep.Summary.CurrentValue,
		l.HPR, rep.Summary.HPR)

	fmt.Fprintf(w, "## %s\n\n", l.SummaryTable)
	fmt.Fprintf(w, "%s: %s\n\n", l.SummarizeBy, l.GroupBy)
	writeRow(w, l.GroupBy, l.Investment, l.CurrentValue, l.HPR)
	writeRule(w, 4)
	for _, r := range rep.Table {
		writeRow(w, r.Key, r.Investment, r.CurrentValue, emphasize(r.HPR, r.Highlight, em))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## %s\n\n", l.AllocationTitle)
	for _, s := range rep.Allocation {
		fmt.Fprintf(w, "- %s: %s\n", cell(s.Label), format.Currency(s.Value))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## %s\n\n", l.DetailedHoldings)
	writeRow(w, l.Member, l.Broker, l.Sector, l.StockName, l.Quantity, l.Investment, l.CurrentValue, l.HPR)
	writeRule(w, 8)
	for _, d := range rep.Details {
		writeRow(w, d.Member, d.Broker, d.Sector, d.Stock, d.Quantity, d.Investment, d.CurrentValue, emphasize(d.HPR, d.Highlight, em))
	}
}

func Markdown(rep *service.Report, em Emphasis) string {
	var b strings.Builder
	WriteMarkdown(&b, rep, em)
	return b.String()
}

const htmlHead = `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
td:has(.negative) { background-color: #ffe6e6; }
</style>
</head>
<body>
`

// HTML converts the markdown report into a standalone page.
func HTML(rep *service.Report) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, htmlHead, rep.Lang, rep.Labels.Title)
	if err := md.Convert([]byte(Markdown(rep, NegativeSpan)), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// Terminal renders the report for display in a terminal.
func Terminal(rep *service.Report, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(Markdown(rep, Bold))
}

func emphasize(s string, highlight bool, em Emphasis) string {
	if !highlight || em == nil {
		return s
	}
	return em(s)
}

func writeRow(w io.Writer, cells ...string) {
	for i, c := range cells {
		cells[i] = cell(c)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
}

func writeRule(w io.Writer, n int) {
	fmt.Fprintf(w, "|%s\n", strings.Repeat("---|", n))
}

func cell(s string) string {
	if s == "" {
		return " "
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
