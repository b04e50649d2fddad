package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

type TableConfig struct {
	NameWidth    int
	ValueWidth   int
	ChangeWidth  int
	PatternWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:    36,
		ValueWidth:   14,
		ChangeWidth:  10,
		PatternWidth: 20,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// Writer exposes the underlying output stream.
func (c *Reporter) Writer() io.Writer {
	return c.writer
}

func (c *Reporter) Handle(report *domain.AnalysisReport) error {
	funcMap := template.FuncMap{
		"formatRow": func(r domain.ComparisonRecord) string {
			change := "-"
			if r.PctChange != nil {
				change = fmt.Sprintf("%+.1f%%", *r.PctChange)
			}
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s | %-*s |",
				c.config.NameWidth, r.Name(),
				c.config.ValueWidth, r.ValueN1.String(),
				c.config.ValueWidth, r.ValueN.String(),
				c.config.ChangeWidth, change,
				c.config.PatternWidth, string(r.Pattern))
		},
		"header": func() string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s | %-*s |",
				c.config.NameWidth, "PEG",
				c.config.ValueWidth, "N-1",
				c.config.ValueWidth, "N",
				c.config.ChangeWidth, "Change",
				c.config.PatternWidth, "Pattern")
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.ChangeWidth+2),
				strings.Repeat("-", c.config.PatternWidth+2))
		},
	}

	tmpl := `
PEG Comparison Report

Period N-1: {{.RangeN1}}
Period N:   {{.RangeN}}

{{separator}}
{{header}}
{{separator}}
{{- range .Records}}
{{formatRow .}}
{{- end}}
{{separator}}
{{- if .Warnings}}

Warnings:
{{- range .Warnings}}
  [{{.Category}}] {{.Message}}
{{- end}}
{{- end}}

Analysis ({{.Result.ModelUsed}}, {{.Result.TokensUsed}} tokens):

{{.Result.Summary}}
{{- if .Result.KeyInsights}}

Key insights:
{{- range .Result.KeyInsights}}
  - {{.}}
{{- end}}
{{- end}}
{{- if .Result.Recommendations}}

Recommendations:
{{- range .Result.Recommendations}}
  - {{.}}
{{- end}}
{{- end}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}
	return t.Execute(c.writer, report)
}
