package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sonartools.dev/sonar-tools/internal/measures"
	"sonartools.dev/sonar-tools/internal/output"
	"sonartools.dev/sonar-tools/internal/projects"
	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/internal/utils"
)

// newMeasuresExportCmd creates the measures-export command
func newMeasuresExportCmd(flags *globalFlags) *cobra.Command {
	var (
		projectKeys      string
		metricKeys       string
		withBranches     bool
		withURL          bool
		history          bool
		format           string
		outputFile       string
		csvSeparator     string
		ratingsAsNumbers bool
		percentsAsString bool
		datesWithoutTime bool
	)

	cmd := &cobra.Command{
		Use:   "measures-export",
		Short: "Export measures of projects to CSV or JSON",
		Long: `Export measures of all or selected projects to CSV or JSON.

Metrics are selected with -m: a comma separated list of metric keys,
"_main" for the main metrics, or "_all" for every metric of the platform.`,
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

			metricList, err := measures.ResolveSelection(ctx, client, metricKeys)
			if err != nil {
				return err
			}
			projectList, err := projects.Search(ctx, client, utils.CSVToList(projectKeys))
			if err != nil {
				return err
			}
			sess.log.Info("Exporting measures of %d projects", len(projectList))

			if withBranches {
				edition, err := client.Edition(ctx)
				if err != nil {
					return err
				}
				if edition == sonar.EditionCommunity {
					sess.log.Warn("Community edition has no branches, exporting the main branch only")
					withBranches = false
				}
			}

			sink, err := output.NewSink(outputFile)
			if err != nil {
				return err
			}
			defer sink.Close()

			opts := convertOptions(ratingsAsNumbers, percentsAsString, datesWithoutTime)
			if history {
				return exportMeasuresHistory(ctx, client, projectList, metricList, opts,
					output.DeduceFormat(format, outputFile), separatorOrDefault(csvSeparator, sess), sink)
			}

			exp := measuresExporter{
				format:       output.DeduceFormat(format, outputFile),
				separator:    separatorOrDefault(csvSeparator, sess),
				metrics:      metricList,
				withBranches: withBranches,
				withURL:      withURL,
				opts:         opts,
				baseURL:      client.URL(),
				sink:         sink,
			}
			if err := exp.begin(); err != nil {
				return err
			}

			for _, project := range projectList {
				if !withBranches {
					if err := exp.write(ctx, client, project, ""); err != nil {
						return err
					}
					continue
				}
				branches, err := projects.Branches(ctx, client, project)
				if err != nil {
					return err
				}
				for _, branch := range branches {
					if err := exp.write(ctx, client, project, branch.Name); err != nil {
						return err
					}
				}
			}
			return exp.end()
		},
	}

	cmd.Flags().StringVarP(&projectKeys, "projectKeys", "k", "", "Comma separated list of project keys (default: all projects)")
	cmd.Flags().StringVarP(&metricKeys, "metricKeys", "m", measures.SelectionMain, "Comma separated list of metrics, _main or _all")
	cmd.Flags().BoolVarP(&withBranches, "withBranches", "b", false, "Export measures of all branches, not just the main one")
	cmd.Flags().BoolVar(&withURL, "withURL", false, "Add the project or branch dashboard URL to each row")
	cmd.Flags().BoolVar(&history, "history", false, "Export the history of the selected metrics instead of their current value")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv or json (default: deduced from output file, csv otherwise)")
	cmd.Flags().StringVarP(&outputFile, "outputFile", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&csvSeparator, "csvSeparator", "", "CSV field separator")
	cmd.Flags().BoolVarP(&ratingsAsNumbers, "ratingsAsNumbers", "r", false, "Export ratings as numbers 1..5 instead of letters A..E")
	cmd.Flags().BoolVarP(&percentsAsString, "percentsAsString", "p", false, "Export percentages as strings like 45.0% instead of floats")
	cmd.Flags().BoolVarP(&datesWithoutTime, "datesWithoutTime", "d", false, "Export dates without their time part")

	return cmd
}

// exportMeasuresHistory writes one row per project, date and metric
func exportMeasuresHistory(ctx context.Context, client *sonar.Client, projectList []projects.Project,
	metricList []string, opts measures.ConvertOptions, format, separator string, sink *output.Sink) error {
	if format == output.FormatJSON {
		jsonw, err := output.NewJSONArrayWriter(sink)
		if err != nil {
			return err
		}
		for _, project := range projectList {
			points, err := measures.GetHistory(ctx, client, project.Key, metricList)
			if err != nil {
				return err
			}
			for _, point := range points {
				row := map[string]interface{}{
					"key":    project.Key,
					"name":   project.Name,
					"date":   point.Date,
					"metric": point.Metric,
					"value":  measures.Convert(point.Metric, point.Value, opts),
				}
				if err := jsonw.Write(row); err != nil {
					return err
				}
			}
		}
		return jsonw.Close()
	}

	header := []string{"key", "name", "date", "metric", "value"}
	if _, err := fmt.Fprintf(sink, "# %s\n", strings.Join(header, separator)); err != nil {
		return err
	}
	w := csv.NewWriter(sink)
	w.Comma = rune(separator[0])
	for _, project := range projectList {
		points, err := measures.GetHistory(ctx, client, project.Key, metricList)
		if err != nil {
			return err
		}
		for _, point := range points {
			record := []string{project.Key, project.Name, point.Date, point.Metric,
				measures.Convert(point.Metric, point.Value, opts)}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func convertOptions(ratingsAsNumbers, percentsAsString, datesWithoutTime bool) measures.ConvertOptions {
	opts := measures.DefaultConvertOptions()
	if ratingsAsNumbers {
		opts.Ratings = measures.RatingsNumbers
	}
	if percentsAsString {
		opts.Percents = measures.PercentsString
	}
	if datesWithoutTime {
		opts.Dates = measures.DatesDateOnly
	}
	return opts
}

func separatorOrDefault(flag string, sess *session) string {
	if flag != "" {
		return flag
	}
	return sess.cfg.CSVSeparator
}

// measuresExporter writes one row per project or branch
type measuresExporter struct {
	format       string
	separator    string
	metrics      []string
	withBranches bool
	withURL      bool
	opts         measures.ConvertOptions
	baseURL      string
	sink         *output.Sink

	csvw  *csv.Writer
	jsonw *output.JSONArrayWriter
}

func (e *measuresExporter) begin() error {
	if e.format == output.FormatJSON {
		jsonw, err := output.NewJSONArrayWriter(e.sink)
		if err != nil {
			return err
		}
		e.jsonw = jsonw
		return nil
	}
	header := []string{"key", "name"}
	if e.withBranches {
		header = append(header, "branch")
	}
	header = append(header, "lastAnalysis")
	header = append(header, e.metrics...)
	if e.withURL {
		header = append(header, "url")
	}
	if _, err := fmt.Fprintf(e.sink, "# %s\n", strings.Join(header, e.separator)); err != nil {
		return err
	}
	e.csvw = csv.NewWriter(e.sink)
	e.csvw.Comma = rune(e.separator[0])
	return nil
}

func (e *measuresExporter) write(ctx context.Context, client *sonar.Client, project projects.Project, branch string) error {
	values, err := measures.Get(ctx, client, project.Key, branch, e.metrics)
	if err != nil {
		return err
	}
	for metric, value := range values {
		values[metric] = measures.Convert(metric, value, e.opts)
	}

	if e.jsonw != nil {
		row := map[string]interface{}{
			"key":          project.Key,
			"name":         project.Name,
			"lastAnalysis": projects.LastAnalysisString(project.LastAnalysis, e.opts.Dates == measures.DatesDatetime),
		}
		if branch != "" {
			row["branch"] = branch
		}
		if e.withURL {
			row["url"] = e.rowURL(project, branch)
		}
		for metric, value := range values {
			row[metric] = value
		}
		return e.jsonw.Write(row)
	}

	record := []string{project.Key, project.Name}
	if e.withBranches {
		record = append(record, branch)
	}
	record = append(record, projects.LastAnalysisString(project.LastAnalysis, e.opts.Dates == measures.DatesDatetime))
	for _, metric := range e.metrics {
		record = append(record, values[metric])
	}
	if e.withURL {
		record = append(record, e.rowURL(project, branch))
	}
	if err := e.csvw.Write(record); err != nil {
		return err
	}
	return nil
}

func (e *measuresExporter) rowURL(project projects.Project, branch string) string {
	if branch == "" {
		return project.URL(e.baseURL)
	}
	b := projects.Branch{ProjectKey: project.Key, Name: branch}
	return b.URL(e.baseURL)
}

func (e *measuresExporter) end() error {
	if e.jsonw != nil {
		return e.jsonw.Close()
	}
	e.csvw.Flush()
	return e.csvw.Error()
}
