package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ringlify/ringlify-cli/internal/observability"
)

// Palette used when styling is enabled.
const (
	colorPrimary = "#7C3AED"
	colorMuted   = "#6B7280"
	colorText    = "#E5E7EB"
	colorError   = "#EF4444"
	colorSuccess = "#10B981"
	colorWarning = "#F59E0B"
)

// Renderer handles styled terminal output.
type Renderer struct {
	width  int
	styled bool

	Summary lipgloss.Style
	Muted   lipgloss.Style
	Data    lipgloss.Style
	Error   lipgloss.Style
	Hint    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	Header    lipgloss.Style
	Cell      lipgloss.Style
	CellMuted lipgloss.Style
}

// NewRenderer creates a renderer for w. Styling is enabled when w is a
// terminal or forceStyled is set, unless NO_COLOR is present.
func NewRenderer(w io.Writer, forceStyled bool) *Renderer {
	width, tty := terminalInfo(w)
	styled := (tty || forceStyled) && os.Getenv("NO_COLOR") == ""

	if styled {
		lipgloss.SetColorProfile(2) // TrueColor
	} else {
		lipgloss.SetColorProfile(0) // Ascii
	}

	r := &Renderer{width: width, styled: styled}
	plain := lipgloss.NewStyle()
	if !styled {
		r.Summary, r.Muted, r.Data = plain, plain, plain
		r.Error, r.Hint, r.Success, r.Warning = plain, plain, plain, plain
		r.Header, r.Cell, r.CellMuted = plain, plain, plain
		return r
	}

	fg := func(c string) lipgloss.Style { return plain.Foreground(lipgloss.Color(c)) }
	r.Summary = fg(colorPrimary).Bold(true)
	r.Muted = fg(colorMuted)
	r.Data = fg(colorText)
	r.Error = fg(colorError).Bold(true)
	r.Hint = fg(colorMuted).Italic(true)
	r.Success = fg(colorSuccess)
	r.Warning = fg(colorWarning)
	r.Header = fg(colorText).Bold(true)
	r.Cell = fg(colorText)
	r.CellMuted = fg(colorMuted)
	return r
}

// terminalInfo returns the terminal width and whether the writer is a TTY.
func terminalInfo(w io.Writer) (width int, tty bool) {
	width = 80
	f, ok := w.(*os.File)
	if !ok {
		return width, false
	}
	if cols, _, err := term.GetSize(f.Fd()); err == nil && cols >= 40 {
		width = cols
	}
	return width, term.IsTerminal(f.Fd())
}

// RenderResponse renders a success response to the writer.
func (r *Renderer) RenderResponse(w io.Writer, resp *Response) error {
	var b strings.Builder

	if resp.Summary != "" {
		b.WriteString(r.Summary.Render(resp.Summary))
		b.WriteString("\n\n")
	}

	r.renderData(&b, NormalizeData(resp.Data))

	if len(resp.Breadcrumbs) > 0 {
		b.WriteString("\n")
		r.renderBreadcrumbs(&b, resp.Breadcrumbs)
	}

	if stats := extractStats(resp.Meta); stats != nil {
		if parts := stats.FormatParts(); len(parts) > 0 {
			b.WriteString("\n")
			b.WriteString(r.Muted.Render("Stats: " + strings.Join(parts, " | ")))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderError renders an error response to the writer.
func (r *Renderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	var b strings.Builder

	b.WriteString(r.Error.Render("Error: " + resp.Error))
	b.WriteString("\n")
	if resp.Hint != "" {
		b.WriteString(r.Hint.Render("Hint: " + resp.Hint))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) renderData(b *strings.Builder, data any) {
	switch d := data.(type) {
	case []map[string]any:
		if len(d) == 0 {
			b.WriteString(r.Muted.Render("(no results)"))
			b.WriteString("\n")
			return
		}
		r.renderTable(b, d)
	case map[string]any:
		r.renderObject(b, d)
	case []any:
		if len(d) == 0 {
			b.WriteString(r.Muted.Render("(no results)"))
			b.WriteString("\n")
			return
		}
		for _, item := range d {
			b.WriteString(r.Data.Render("• " + formatCell(item)))
			b.WriteString("\n")
		}
	case string:
		b.WriteString(r.Data.Render(d))
		b.WriteString("\n")
	case nil:
		b.WriteString(r.Muted.Render("(no data)"))
		b.WriteString("\n")
	default:
		b.WriteString(r.Data.Render(fmt.Sprintf("%v", data)))
		b.WriteString("\n")
	}
}

// Column priority for table rendering (lower = higher priority)
var columnPriority = map[string]int{
	"id":             1,
	"name":           2,
	"callerPhone":    2,
	"callerName":     3,
	"phone":          3,
	"phoneNumber":    3,
	"status":         4,
	"start":          5,
	"requestedStart": 5,
	"end":            6,
	"bookedStart":    6,
	"bookedEnd":      7,
	"business":       8,
	"email":          9,
	"timezone":       9,
	"description":    10,
	"createdAt":      11,
}

var mutedColumns = map[string]bool{
	"id":        true,
	"createdAt": true,
}

// Nested objects rendered by their name; every other nested object is skipped.
var namedObjectColumns = map[string]bool{
	"business": true,
}

var dateColumns = map[string]bool{
	"start":          true,
	"end":            true,
	"requestedStart": true,
	"bookedStart":    true,
	"bookedEnd":      true,
	"createdAt":      true,
}

type column struct {
	key      string
	header   string
	priority int
	muted    bool
	width    int
}

func priorityOf(key string) int {
	if p := columnPriority[key]; p != 0 {
		return p
	}
	return 50
}

func (r *Renderer) renderTable(b *strings.Builder, data []map[string]any) {
	columns := r.selectColumns(detectColumns(data), data)
	if len(columns) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.Header
			}
			if col < len(columns) && columns[col].muted {
				return r.CellMuted
			}
			return r.Cell
		})

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.header
	}
	t.Headers(headers...)

	for _, item := range data {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = formatValue(col.key, item[col.key])
		}
		t.Row(row...)
	}

	b.WriteString(t.String())
	b.WriteString("\n")
}

func detectColumns(data []map[string]any) []column {
	if len(data) == 0 {
		return nil
	}

	var cols []column
	for key, val := range data[0] {
		if !renderable(key, val) {
			continue
		}
		cols = append(cols, column{
			key:      key,
			header:   formatHeader(key),
			priority: priorityOf(key),
			muted:    mutedColumns[key],
		})
	}

	sort.Slice(cols, func(i, j int) bool {
		if cols[i].priority != cols[j].priority {
			return cols[i].priority < cols[j].priority
		}
		return cols[i].key < cols[j].key
	})
	return cols
}

func renderable(key string, val any) bool {
	switch val.(type) {
	case map[string]any:
		return namedObjectColumns[key]
	case []map[string]any, []any:
		return false
	}
	return true
}

func (r *Renderer) selectColumns(cols []column, data []map[string]any) []column {
	if len(cols) == 0 {
		return cols
	}

	for i := range cols {
		cols[i].width = lipgloss.Width(cols[i].header)
		for _, row := range data {
			if w := lipgloss.Width(formatValue(cols[i].key, row[cols[i].key])); w > cols[i].width {
				cols[i].width = w
			}
		}
		if cols[i].width > 40 {
			cols[i].width = 40
		}
	}

	// Drop lowest-priority columns until the table fits.
	const padding = 2
	selected := cols
	for len(selected) > 1 {
		total := 0
		for _, col := range selected {
			total += col.width + padding
		}
		if total <= r.width {
			break
		}
		selected = selected[:len(selected)-1]
	}
	return selected
}

func (r *Renderer) renderObject(b *strings.Builder, data map[string]any) {
	var keys []string
	for k, v := range data {
		if renderable(k, v) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		b.WriteString(r.Muted.Render("(no data)"))
		b.WriteString("\n")
		return
	}

	sort.Slice(keys, func(i, j int) bool {
		pi, pj := priorityOf(keys[i]), priorityOf(keys[j])
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})

	maxLen := 0
	for _, k := range keys {
		if l := len(formatHeader(k)); l > maxLen {
			maxLen = l
		}
	}

	for _, k := range keys {
		label := r.Muted.Render(fmt.Sprintf("%-*s: ", maxLen, formatHeader(k)))
		style := r.Data
		if mutedColumns[k] {
			style = r.CellMuted
		}
		b.WriteString(label + style.Render(formatValue(k, data[k])) + "\n")
	}
}

func (r *Renderer) renderBreadcrumbs(b *strings.Builder, crumbs []Breadcrumb) {
	b.WriteString(r.Muted.Render("Next:"))
	b.WriteString("\n")
	for _, bc := range crumbs {
		line := r.Muted.Render("  " + bc.Cmd)
		if bc.Description != "" {
			line += r.Muted.Render("  # " + bc.Description)
		}
		b.WriteString(line + "\n")
	}
}

// formatHeader turns a camelCase JSON key into a title: "callerPhone" → "Caller Phone".
func formatHeader(key string) string {
	var words []string
	start := 0
	for i := 1; i < len(key); i++ {
		if key[i] >= 'A' && key[i] <= 'Z' {
			words = append(words, key[start:i])
			start = i
		}
	}
	words = append(words, key[start:])
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatValue(key string, val any) string {
	if dateColumns[key] {
		return formatDate(val)
	}
	return formatCell(val)
}

func formatCell(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		if len(v) > 40 {
			return v[:37] + "..."
		}
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
		if id, ok := v["id"]; ok {
			return fmt.Sprintf("%v", id)
		}
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatDate renders an ISO-8601 timestamp in local time.
func formatDate(val any) string {
	s, ok := val.(string)
	if !ok || s == "" {
		return formatCell(val)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return formatCell(val)
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

// FormatNumber renders n with locale-aware digit grouping.
func FormatNumber(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func extractStats(meta map[string]any) *observability.SessionMetrics {
	if meta == nil {
		return nil
	}
	stats, _ := meta["stats"].(*observability.SessionMetrics)
	return stats
}
