package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/tmin/internal"
	"github.com/gnolang/tmin/internal/reducer"
	tt "github.com/gnolang/tmin/internal/types"
)

var (
	titleStyle   = color.New(color.FgGreen, color.Bold)
	langStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	labelStyle   = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgWhite)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
)

const reportTemplate = `{{header .Language .Filename .Padding}}
{{snippet .SnippetLines .MaxLineNumWidth .CommonIndent .Padding}}{{size .OriginalSize .ReducedSize .Padding}}{{phases .Phases .Padding}}{{stats .Stats .Padding}}{{complexity .Complexity .Padding}}{{output .Output .Padding}}
`

type ReportData struct {
	Language        string
	Filename        string
	Output          string
	Padding         string
	MaxLineNumWidth int
	SnippetLines    []string
	CommonIndent    string
	OriginalSize    int
	ReducedSize     int
	Phases          []reducer.Phase
	Stats           reducer.Stats
	Complexity      *tt.Complexity
}

var funcMap = template.FuncMap{
	"header":     header,
	"snippet":    codeSnippet,
	"size":       size,
	"phases":     phases,
	"stats":      stats,
	"complexity": complexityInfo,
	"output":     output,
}

var tmpl = template.Must(template.New("report").Funcs(funcMap).Parse(reportTemplate))

// GenerateFormattedReport renders reports into a human-readable string.
func GenerateFormattedReport(reports []*tt.Report) string {
	var builder strings.Builder
	for _, report := range reports {
		builder.WriteString(buildReport(report))
	}
	return builder.String()
}

func buildReport(report *tt.Report) string {
	snippet := internal.ReadSourceCode(strings.TrimRight(report.Reduced, "\n"))
	maxLineNumWidth := calculateMaxLineNumWidth(len(snippet.Lines))

	filename := report.Filename
	if filename == "" {
		filename = "<source>"
	}

	data := ReportData{
		Language:        report.Language,
		Filename:        filename,
		Output:          report.Output,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		MaxLineNumWidth: maxLineNumWidth,
		SnippetLines:    snippet.Lines,
		CommonIndent:    findCommonIndent(snippet.Lines),
		OriginalSize:    len(report.Original),
		ReducedSize:     len(report.Reduced),
		Phases:          report.Phases,
		Stats:           report.Stats,
		Complexity:      report.Complexity,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting report: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(language string, filename string, padding string) string {
	endString := titleStyle.Sprint("reduced: ")
	endString += langStyle.Sprintf("%s\n", language)
	endString += lineStyle.Sprintf("%s--> ", padding[1:])
	endString += fileStyle.Sprint(filename)
	return endString
}

func codeSnippet(snippetLines []string, maxLineNumWidth int, commonIndent string, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	for i, line := range snippetLines {
		line = expandTabs(strings.TrimPrefix(line, commonIndent))
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		endString += lineStyle.Sprintf("%s | ", lineNum) + line + "\n"
	}
	endString += lineStyle.Sprintf("%s|\n", padding)
	return endString
}

func size(original, reduced int, padding string) string {
	ratio := 100.0
	if original > 0 {
		ratio = float64(reduced) / float64(original) * 100
	}
	return lineStyle.Sprintf("%s= ", padding) +
		labelStyle.Sprint("size: ") +
		messageStyle.Sprintf("%d -> %d bytes (%.1f%%)\n", original, reduced, ratio)
}

func phases(list []reducer.Phase, padding string) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, len(list))
	for i, p := range list {
		parts[i] = fmt.Sprintf("%s %d", p.Name, p.Size)
	}
	return lineStyle.Sprintf("%s= ", padding) +
		labelStyle.Sprint("phases: ") +
		messageStyle.Sprintf("%s\n", strings.Join(parts, ", "))
}

func stats(s reducer.Stats, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) +
		labelStyle.Sprint("oracle: ") +
		messageStyle.Sprintf("%d calls, %d rejected, %d parse failures, %d skipped\n",
			s.OracleCalls, s.Rejected, s.ParseFailures, s.Skipped) +
		lineStyle.Sprintf("%s= ", padding) +
		labelStyle.Sprint("edits: ") +
		messageStyle.Sprintf("%d deletions, %d substitutions, %d comment edits\n",
			s.Deletions, s.Substitutions, s.CommentEdits)
}

func complexityInfo(c *tt.Complexity, padding string) string {
	if c == nil {
		return ""
	}
	style := messageStyle
	if c.After > c.Before {
		style = warningStyle
	}
	return lineStyle.Sprintf("%s= ", padding) +
		labelStyle.Sprint("complexity: ") +
		style.Sprintf("%d -> %d\n", c.Before, c.After)
}

func output(path string, padding string) string {
	if path == "" {
		return ""
	}
	return lineStyle.Sprintf("%s= ", padding) +
		labelStyle.Sprint("written: ") +
		fileStyle.Sprintf("%s\n", path)
}

// expandTabs replaces tab characters with spaces, considering a tab width of 8
func expandTabs(line string) string {
	var expanded strings.Builder
	column := 0
	for _, ch := range line {
		if ch == '\t' {
			spaceCount := 8 - (column % 8)
			expanded.WriteString(strings.Repeat(" ", spaceCount))
			column += spaceCount
			continue
		}
		expanded.WriteRune(ch)
		column++
	}
	return expanded.String()
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// findCommonIndent finds the common indent in the code snippet.
func findCommonIndent(lines []string) string {
	var indent []rune
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		current := []rune(line[:len(line)-len(trimmed)])
		if !found {
			indent, found = current, true
			continue
		}
		indent = commonPrefix(indent, current)
		if len(indent) == 0 {
			break
		}
	}
	return string(indent)
}

// commonPrefix finds the common prefix of two strings.
func commonPrefix(a, b []rune) []rune {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
