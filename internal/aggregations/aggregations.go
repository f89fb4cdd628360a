// Package aggregations covers SonarQube applications and portfolios,
// the two project aggregation concepts of the commercial editions.
package aggregations

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"sonartools.dev/sonar-tools/internal/audit"
	"sonartools.dev/sonar-tools/internal/sonar"
)

// Aggregation kinds
const (
	KindApplication = "application"
	KindPortfolio   = "portfolio"
)

// Aggregation is an application or a portfolio
type Aggregation struct {
	Key        string
	Name       string
	Kind       string
	Visibility string

	projectCount int
	ncloc        int
	loaded       bool
}

func (a *Aggregation) String() string {
	return fmt.Sprintf("%s '%s'", a.Kind, a.Key)
}

// Search lists all aggregations of one kind. Applications have qualifier
// APP, portfolios VW.
func Search(ctx context.Context, client *sonar.Client, kind string) ([]*Aggregation, error) {
	qualifier := "APP"
	if kind == KindPortfolio {
		qualifier = "VW"
	}
	var all []*Aggregation
	page := 1
	for {
		params := url.Values{}
		params.Set("qualifiers", qualifier)
		params.Set("ps", strconv.Itoa(sonar.APIPageSize))
		params.Set("p", strconv.Itoa(page))
		var payload struct {
			Paging     sonar.Paging `json:"paging"`
			Components []struct {
				Key        string `json:"key"`
				Name       string `json:"name"`
				Visibility string `json:"visibility"`
			} `json:"components"`
		}
		if err := client.Get(ctx, "components/search", params, &payload); err != nil {
			return nil, err
		}
		for _, c := range payload.Components {
			all = append(all, &Aggregation{Key: c.Key, Name: c.Name, Kind: kind, Visibility: c.Visibility})
		}
		if page >= sonar.Pages(payload.Paging.Total) {
			break
		}
		page++
	}
	return all, nil
}

// loadCounts fetches the project count and LoC of the aggregation
func (a *Aggregation) loadCounts(ctx context.Context, client *sonar.Client) error {
	if a.loaded {
		return nil
	}
	params := url.Values{}
	params.Set("component", a.Key)
	params.Set("metricKeys", "projects,ncloc")
	var payload struct {
		Component struct {
			Measures []struct {
				Metric string `json:"metric"`
				Value  string `json:"value"`
			} `json:"measures"`
		} `json:"component"`
	}
	if err := client.Get(ctx, "measures/component", params, &payload); err != nil {
		return err
	}
	for _, m := range payload.Component.Measures {
		switch m.Metric {
		case "projects":
			a.projectCount, _ = strconv.Atoi(m.Value)
		case "ncloc":
			a.ncloc, _ = strconv.Atoi(m.Value)
		}
	}
	a.loaded = true
	return nil
}

// ProjectCount returns the number of projects in the aggregation
func (a *Aggregation) ProjectCount(ctx context.Context, client *sonar.Client) (int, error) {
	if err := a.loadCounts(ctx, client); err != nil {
		return 0, err
	}
	return a.projectCount, nil
}

// Ncloc returns the lines of code of the aggregation
func (a *Aggregation) Ncloc(ctx context.Context, client *sonar.Client) (int, error) {
	if err := a.loadCounts(ctx, client); err != nil {
		return 0, err
	}
	return a.ncloc, nil
}

// Audit flags empty and single-project aggregations
func (a *Aggregation) Audit(ctx context.Context, client *sonar.Client) ([]audit.Problem, error) {
	count, err := a.ProjectCount(ctx, client)
	if err != nil {
		return nil, err
	}
	switch count {
	case 0:
		return []audit.Problem{audit.NewProblem(audit.AggregationEmpty, a.Key, a)}, nil
	case 1:
		return []audit.Problem{audit.NewProblem(audit.AggregationSingleton, a.Key, a)}, nil
	}
	return nil, nil
}

// AuditAll audits every application and portfolio. Community edition has
// neither; the caller skips the audit there.
func AuditAll(ctx context.Context, client *sonar.Client) ([]audit.Problem, error) {
	var problems []audit.Problem
	for _, kind := range []string{KindApplication, KindPortfolio} {
		aggs, err := Search(ctx, client, kind)
		if err != nil {
			return nil, err
		}
		for _, a := range aggs {
			p, err := a.Audit(ctx, client)
			if err != nil {
				return nil, err
			}
			problems = append(problems, p...)
		}
	}
	return problems, nil
}
