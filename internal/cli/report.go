package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sonartools.dev/sonar-tools/internal/output"
	"sonartools.dev/sonar-tools/internal/report"
)

// Report output formats
const (
	reportFormatMarkdown = "markdown"
	reportFormatHTML     = "html"
	reportFormatTerminal = "terminal"
)

// newReportCmd creates the report command
func newReportCmd(flags *globalFlags) *cobra.Command {
	var (
		inputFile  string
		format     string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render an executive report from a configuration export",
		Long: `Render an executive report from a configuration export produced by
config export: platform totals, quality gate and profile usage, DevOps
bindings, CI pipelines, applications and portfolios.

The report is designed for a full platform export. Sections absent from
the input, for example quality profiles or applications exported by
other tooling, are simply left out of the report.

The report is rendered as Markdown by default, styled for the terminal
when stdout is a terminal, or as HTML with --format html.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.newSession()
			if err != nil {
				return err
			}
			defer sess.close()

			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read configuration export: %w", err)
			}
			var cfg report.Config
			if err := json.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("failed to parse configuration export: %w", err)
			}

			var rendered string
			switch deduceReportFormat(format, outputFile) {
			case reportFormatHTML:
				rendered, err = report.RenderHTML(&cfg)
			case reportFormatTerminal:
				rendered, err = report.RenderTerminal(&cfg)
			default:
				rendered, err = report.Render(&cfg)
			}
			if err != nil {
				return err
			}

			sink, err := output.NewSink(outputFile)
			if err != nil {
				return err
			}
			defer sink.Close()
			_, err = fmt.Fprint(sink, rendered)
			return err
		},
	}

	cmd.Flags().StringVarP(&inputFile, "inputFile", "i", "", "Configuration export to report on")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: markdown, html or terminal (default: terminal on a terminal, markdown otherwise)")
	cmd.Flags().StringVarP(&outputFile, "outputFile", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("inputFile")

	return cmd
}

func deduceReportFormat(format, outputFile string) string {
	switch format {
	case reportFormatMarkdown, reportFormatHTML, reportFormatTerminal:
		return format
	}
	if outputFile == "" && isatty.IsTerminal(os.Stdout.Fd()) {
		return reportFormatTerminal
	}
	return reportFormatMarkdown
}
