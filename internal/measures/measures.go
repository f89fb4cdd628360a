package measures

import (
	"context"
	"net/url"
	"strconv"

	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/internal/utils"
)

// Get retrieves the requested measures of a component (project, branch or
// aggregation) as a metric-key to value map. Branch may be empty.
func Get(ctx context.Context, client *sonar.Client, componentKey, branch string, metricKeys []string) (map[string]string, error) {
	params := url.Values{}
	params.Set("component", componentKey)
	params.Set("metricKeys", utils.ListToCSV(metricKeys))
	if branch != "" {
		params.Set("branch", branch)
	}
	var payload struct {
		Component struct {
			Measures []struct {
				Metric string `json:"metric"`
				Value  string `json:"value"`
			} `json:"measures"`
		} `json:"component"`
	}
	if err := client.Get(ctx, "measures/component", params, &payload); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(payload.Component.Measures))
	for _, m := range payload.Component.Measures {
		values[m.Metric] = m.Value
	}
	return values, nil
}

// HistoryPoint is one point of a metric history
type HistoryPoint struct {
	Date   string `json:"date"`
	Metric string
	Value  string `json:"value"`
}

// GetHistory retrieves the history of metrics of a component
func GetHistory(ctx context.Context, client *sonar.Client, componentKey string, metricKeys []string) ([]HistoryPoint, error) {
	var all []HistoryPoint
	page := 1
	for {
		params := url.Values{}
		params.Set("component", componentKey)
		params.Set("metrics", utils.ListToCSV(metricKeys))
		params.Set("ps", "500")
		params.Set("p", strconv.Itoa(page))
		var payload struct {
			Paging   sonar.Paging `json:"paging"`
			Measures []struct {
				Metric  string `json:"metric"`
				History []struct {
					Date  string `json:"date"`
					Value string `json:"value"`
				} `json:"history"`
			} `json:"measures"`
		}
		if err := client.Get(ctx, "measures/search_history", params, &payload); err != nil {
			return nil, err
		}
		for _, m := range payload.Measures {
			for _, h := range m.History {
				all = append(all, HistoryPoint{Date: h.Date, Metric: m.Metric, Value: h.Value})
			}
		}
		if page >= sonar.Pages(payload.Paging.Total) {
			break
		}
		page++
	}
	return all, nil
}
