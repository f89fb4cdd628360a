package cli

import (
	"context"
	"encoding/csv"
	"fmt"

	"github.com/spf13/cobra"

	"sonartools.dev/sonar-tools/internal/aggregations"
	"sonartools.dev/sonar-tools/internal/audit"
	"sonartools.dev/sonar-tools/internal/errors"
	"sonartools.dev/sonar-tools/internal/output"
	"sonartools.dev/sonar-tools/internal/permissions"
	"sonartools.dev/sonar-tools/internal/projects"
	"sonartools.dev/sonar-tools/internal/qualitygates"
	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/internal/utils"
)

// Audit sections selectable with --what
const (
	auditQualityGates = "qualitygates"
	auditPermissions  = "permissions"
	auditAggregations = "aggregations"
)

// newAuditCmd creates the audit command
func newAuditCmd(flags *globalFlags) *cobra.Command {
	var (
		what          string
		auditSettings string
		format        string
		outputFile    string
		csvSeparator  string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit the platform configuration and report problems",
		Long: `Audit the platform configuration and report problems found:
quality gates, project permissions and application/portfolio cardinality.

Exits with code 2 when at least one problem was found, so the command can
gate a CI pipeline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.newSession()
			if err != nil {
				return err
			}
			defer sess.close()

			ctx := cmd.Context()
			client, err := sess.connect(ctx)
			if err != nil {
				return err
			}

			settingsPath := auditSettings
			if settingsPath == "" {
				settingsPath = sess.cfg.AuditSettings
			}
			settings, err := audit.LoadSettings(settingsPath)
			if err != nil {
				return err
			}

			sections := utils.CSVToList(what)
			if len(sections) == 0 {
				sections = []string{auditQualityGates, auditPermissions, auditAggregations}
			}
			problems, err := runAudit(ctx, client, sess, settings, sections)
			if err != nil {
				return err
			}

			sink, err := output.NewSink(outputFile)
			if err != nil {
				return err
			}
			defer sink.Close()

			switch fmtName := deduceAuditFormat(format, outputFile); fmtName {
			case "text":
				err = writeProblemsText(sink, problems)
			case output.FormatCSV:
				err = writeProblemsCSV(sink, problems, separatorOrDefault(csvSeparator, sess))
			case output.FormatJSON:
				err = writeProblemsJSON(sink, problems)
			default:
				return fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, fmtName)
			}
			if err != nil {
				return err
			}

			if len(problems) > 0 {
				sess.log.Warn("%d audit problems found", len(problems))
				return errors.ErrAuditProblems
			}
			sess.log.Info("No audit problems found")
			return nil
		},
	}

	cmd.Flags().StringVarP(&what, "what", "w", "", "Comma separated list of sections to audit: qualitygates, permissions, aggregations (default: all)")
	cmd.Flags().StringVar(&auditSettings, "auditSettings", "", "Path to the audit configuration file (JSON, comments allowed)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, csv or json (default: deduced from output file, text otherwise)")
	cmd.Flags().StringVarP(&outputFile, "outputFile", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&csvSeparator, "csvSeparator", "", "CSV field separator")

	return cmd
}

func runAudit(ctx context.Context, client *sonar.Client, sess *session, settings audit.Settings, sections []string) ([]audit.Problem, error) {
	var problems []audit.Problem
	for _, section := range sections {
		switch section {
		case auditQualityGates:
			sess.log.Info("Auditing quality gates")
			found, err := qualitygates.AuditAll(ctx, client, settings)
			if err != nil {
				return nil, err
			}
			problems = append(problems, found...)
		case auditPermissions:
			sess.log.Info("Auditing project permissions")
			found, err := auditProjectPermissions(ctx, client, settings)
			if err != nil {
				return nil, err
			}
			problems = append(problems, found...)
		case auditAggregations:
			edition, err := client.Edition(ctx)
			if err != nil {
				return nil, err
			}
			if edition == sonar.EditionCommunity {
				sess.log.Info("Community edition has no applications or portfolios, skipping")
				continue
			}
			sess.log.Info("Auditing applications and portfolios")
			found, err := aggregations.AuditAll(ctx, client)
			if err != nil {
				return nil, err
			}
			problems = append(problems, found...)
		default:
			return nil, fmt.Errorf("%q: unknown audit section", section)
		}
	}
	return problems, nil
}

func auditProjectPermissions(ctx context.Context, client *sonar.Client, settings audit.Settings) ([]audit.Problem, error) {
	projectList, err := projects.Search(ctx, client, nil)
	if err != nil {
		return nil, err
	}
	var problems []audit.Problem
	for _, project := range projectList {
		perms, err := permissions.Read(ctx, client, project.Key)
		if err != nil {
			return nil, err
		}
		problems = append(problems, perms.Audit(settings)...)
	}
	return problems, nil
}

// deduceAuditFormat defaults to text on stdout, otherwise follows the file
// extension
func deduceAuditFormat(format, outputFile string) string {
	if format == "" && outputFile == "" {
		return "text"
	}
	return output.DeduceFormat(format, outputFile)
}

func writeProblemsText(sink *output.Sink, problems []audit.Problem) error {
	for _, p := range problems {
		severity := string(p.Severity)
		if sink.Path() == "" {
			severity = output.ColorizeSeverity(severity)
		}
		if _, err := fmt.Fprintf(sink, "%s (%s/%s): %s\n", severity, p.Type, p.RuleID, p.Message); err != nil {
			return err
		}
	}
	return nil
}

func writeProblemsCSV(sink *output.Sink, problems []audit.Problem, separator string) error {
	if _, err := fmt.Fprintf(sink, "# severity%stype%srule%scomponent%smessage\n", separator, separator, separator, separator); err != nil {
		return err
	}
	w := csv.NewWriter(sink)
	w.Comma = rune(separator[0])
	for _, p := range problems {
		if err := w.Write([]string{string(p.Severity), string(p.Type), string(p.RuleID), p.Component, p.Message}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeProblemsJSON(sink *output.Sink, problems []audit.Problem) error {
	jsonw, err := output.NewJSONArrayWriter(sink)
	if err != nil {
		return err
	}
	for _, p := range problems {
		if err := jsonw.Write(p); err != nil {
			return err
		}
	}
	return jsonw.Close()
}
