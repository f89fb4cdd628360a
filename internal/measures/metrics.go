// Package measures provides access to SonarQube metrics and measures,
// including the value conversions used by report exports.
package measures

import (
	"context"
	"net/url"
	"strconv"

	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/internal/utils"
)

// Metric selection shortcuts accepted by the measures export
const (
	SelectionMain = "_main"
	SelectionAll  = "_all"
)

// MainMetrics are the metrics exported by default
var MainMetrics = []string{
	"ncloc",
	"bugs",
	"vulnerabilities",
	"code_smells",
	"security_hotspots",
	"coverage",
	"duplicated_lines_density",
	"reliability_rating",
	"security_rating",
	"security_review_rating",
	"sqale_rating",
	"sqale_index",
}

// Metric describes one metric known to the platform
type Metric struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Search lists all metrics defined on the platform
func Search(ctx context.Context, client *sonar.Client) ([]Metric, error) {
	var all []Metric
	page := 1
	for {
		params := url.Values{}
		params.Set("ps", strconv.Itoa(sonar.APIPageSize))
		params.Set("p", strconv.Itoa(page))
		var payload struct {
			Metrics []Metric `json:"metrics"`
			Total   int      `json:"total"`
		}
		if err := client.Get(ctx, "metrics/search", params, &payload); err != nil {
			return nil, err
		}
		all = append(all, payload.Metrics...)
		if page >= sonar.Pages(payload.Total) {
			break
		}
		page++
	}
	return all, nil
}

// ResolveSelection expands a metric selection (_main, _all, or an explicit
// CSV list) into the list of metric keys to export. _all puts the main
// metrics first and every other platform metric after them.
func ResolveSelection(ctx context.Context, client *sonar.Client, selection string) ([]string, error) {
	switch selection {
	case "", SelectionMain:
		return MainMetrics, nil
	case SelectionAll:
		all, err := Search(ctx, client)
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(all))
		for _, m := range all {
			keys = append(keys, m.Key)
		}
		return append(append([]string{}, MainMetrics...), utils.Diff(keys, MainMetrics)...), nil
	default:
		return utils.CSVToList(selection), nil
	}
}
