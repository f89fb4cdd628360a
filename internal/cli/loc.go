package cli

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"sonartools.dev/sonar-tools/internal/measures"
	"sonartools.dev/sonar-tools/internal/output"
	"sonartools.dev/sonar-tools/internal/projects"
	"sonartools.dev/sonar-tools/internal/utils"
)

// newLocCmd creates the loc command
func newLocCmd(flags *globalFlags) *cobra.Command {
	var (
		projectKeys  string
		format       string
		outputFile   string
		csvSeparator string
	)

	cmd := &cobra.Command{
		Use:   "loc",
		Short: "Report lines of code per project, largest first",
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

			projectList, err := projects.Search(ctx, client, utils.CSVToList(projectKeys))
			if err != nil {
				return err
			}

			type locRow struct {
				Key   string `json:"key"`
				Name  string `json:"name"`
				Ncloc int    `json:"ncloc"`
			}
			rows := make([]locRow, 0, len(projectList))
			total := 0
			for _, project := range projectList {
				values, err := measures.Get(ctx, client, project.Key, "", []string{"ncloc"})
				if err != nil {
					return err
				}
				ncloc, _ := strconv.Atoi(values["ncloc"])
				total += ncloc
				rows = append(rows, locRow{Key: project.Key, Name: project.Name, Ncloc: ncloc})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].Ncloc > rows[j].Ncloc })

			sink, err := output.NewSink(outputFile)
			if err != nil {
				return err
			}
			defer sink.Close()

			if output.DeduceFormat(format, outputFile) == output.FormatJSON {
				jsonw, err := output.NewJSONArrayWriter(sink)
				if err != nil {
					return err
				}
				for _, row := range rows {
					if err := jsonw.Write(row); err != nil {
						return err
					}
				}
				if err := jsonw.Close(); err != nil {
					return err
				}
			} else {
				separator := separatorOrDefault(csvSeparator, sess)
				if _, err := fmt.Fprintf(sink, "# key%sname%sncloc\n", separator, separator); err != nil {
					return err
				}
				w := csv.NewWriter(sink)
				w.Comma = rune(separator[0])
				for _, row := range rows {
					if err := w.Write([]string{row.Key, row.Name, strconv.Itoa(row.Ncloc)}); err != nil {
						return err
					}
				}
				w.Flush()
				if err := w.Error(); err != nil {
					return err
				}
			}

			sess.log.Info("%d projects, %d lines of code in total", len(rows), total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectKeys, "projectKeys", "k", "", "Comma separated list of project keys (default: all projects)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv or json (default: deduced from output file, csv otherwise)")
	cmd.Flags().StringVarP(&outputFile, "outputFile", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&csvSeparator, "csvSeparator", "", "CSV field separator")

	return cmd
}
