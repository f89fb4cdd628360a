package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sonartools.dev/sonar-tools/internal/errors"
	"sonartools.dev/sonar-tools/internal/findings"
	"sonartools.dev/sonar-tools/internal/output"
	"sonartools.dev/sonar-tools/internal/projects"
	"sonartools.dev/sonar-tools/internal/utils"
)

// newFindingsExportCmd creates the findings-export command
func newFindingsExportCmd(flags *globalFlags) *cobra.Command {
	var (
		projectKeys      string
		statuses         string
		resolutions      string
		severities       string
		types            string
		languages        string
		tags             string
		branch           string
		pullRequest      string
		createdAfter     string
		createdBefore    string
		withChangelog    bool
		threads          int
		format           string
		outputFile       string
		csvSeparator     string
		datesWithoutTime bool
		sarifFull        bool
	)

	cmd := &cobra.Command{
		Use:   "findings-export",
		Short: "Export issues and security hotspots of projects to CSV, JSON or SARIF",
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

			filters := findings.Filters{
				Statuses:      utils.CSVToList(statuses),
				Resolutions:   utils.CSVToList(resolutions),
				Severities:    utils.CSVToList(severities),
				Types:         utils.CSVToList(types),
				Languages:     utils.CSVToList(languages),
				Tags:          utils.CSVToList(tags),
				Branch:        branch,
				PullRequest:   pullRequest,
				CreatedAfter:  createdAfter,
				CreatedBefore: createdBefore,
			}

			projectList, err := projects.Search(ctx, client, utils.CSVToList(projectKeys))
			if err != nil {
				return err
			}

			var all []*findings.Finding
			for _, project := range projectList {
				list, err := findings.Export(ctx, client, project.Key, filters)
				if err != nil {
					return err
				}
				for _, f := range list {
					f.ProjectName = project.Name
				}
				all = append(all, findings.PostSearchFilter(list, filters)...)
			}
			sess.log.Info("Exporting %d findings of %d projects", len(all), len(projectList))

			if withChangelog {
				if err := findings.CollectChangelogs(ctx, client, all, time.Time{}, threads); err != nil {
					return err
				}
			}

			sink, err := output.NewSink(outputFile)
			if err != nil {
				return err
			}
			defer sink.Close()

			switch fmtName := deduceFindingsFormat(format, outputFile); fmtName {
			case output.FormatCSV:
				return writeFindingsCSV(sink, all, separatorOrDefault(csvSeparator, sess), datesWithoutTime)
			case output.FormatJSON:
				return writeFindingsJSON(sink, all, datesWithoutTime)
			case output.FormatSARIF:
				return writeFindingsSARIF(sink, all, client.URL(), sarifFull)
			default:
				return fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, fmtName)
			}
		},
	}

	cmd.Flags().StringVarP(&projectKeys, "projectKeys", "k", "", "Comma separated list of project keys (default: all projects)")
	cmd.Flags().StringVar(&statuses, "statuses", "", "Comma separated list of statuses to export")
	cmd.Flags().StringVar(&resolutions, "resolutions", "", "Comma separated list of resolutions to export")
	cmd.Flags().StringVar(&severities, "severities", "", "Comma separated list of severities to export")
	cmd.Flags().StringVar(&types, "types", "", "Comma separated list of types to export")
	cmd.Flags().StringVar(&languages, "languages", "", "Comma separated list of languages to export")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated list of tags to export")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch to export findings from")
	cmd.Flags().StringVarP(&pullRequest, "pullRequest", "p", "", "Pull request to export findings from")
	cmd.Flags().StringVar(&createdAfter, "createdAfter", "", "Only export findings created after this date")
	cmd.Flags().StringVar(&createdBefore, "createdBefore", "", "Only export findings created before this date")
	cmd.Flags().BoolVar(&withChangelog, "withChangelog", false, "Collect the changelog and comments of each finding")
	cmd.Flags().IntVar(&threads, "threads", findings.DefaultChangelogWorkers, "Number of concurrent changelog collection requests")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv, json or sarif (default: deduced from output file, csv otherwise)")
	cmd.Flags().StringVarP(&outputFile, "outputFile", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&csvSeparator, "csvSeparator", "", "CSV field separator")
	cmd.Flags().BoolVarP(&datesWithoutTime, "datesWithoutTime", "d", false, "Export dates without their time part")
	cmd.Flags().BoolVar(&sarifFull, "sarifFull", false, "Attach all exported properties to each SARIF result")

	return cmd
}

// deduceFindingsFormat extends the generic deduction with the sarif extension
func deduceFindingsFormat(format, outputFile string) string {
	if strings.HasSuffix(strings.ToLower(outputFile), ".sarif") {
		return output.FormatSARIF
	}
	return output.DeduceFormat(format, outputFile)
}

func writeFindingsCSV(sink *output.Sink, list []*findings.Finding, separator string, withoutTime bool) error {
	if _, err := fmt.Fprintln(sink, findings.CSVHeader(separator)); err != nil {
		return err
	}
	for _, f := range list {
		record := f.ToCSVRecord(separator, withoutTime)
		if _, err := fmt.Fprintln(sink, strings.Join(record, separator)); err != nil {
			return err
		}
	}
	return nil
}

func writeFindingsJSON(sink *output.Sink, list []*findings.Finding, withoutTime bool) error {
	jsonw, err := output.NewJSONArrayWriter(sink)
	if err != nil {
		return err
	}
	for _, f := range list {
		if err := jsonw.Write(f.ToMap(withoutTime)); err != nil {
			return err
		}
	}
	return jsonw.Close()
}

func writeFindingsSARIF(sink *output.Sink, list []*findings.Finding, baseURL string, full bool) error {
	results := make([]map[string]interface{}, 0, len(list))
	for _, f := range list {
		results = append(results, f.ToSARIF(baseURL, full))
	}
	doc := map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.4.json",
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "SonarQube",
						"informationUri": baseURL,
					},
				},
				"results": results,
			},
		},
	}
	enc := json.NewEncoder(sink)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
