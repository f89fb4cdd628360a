package findings

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/internal/utils"
)

// Filters narrows a findings search. All fields are optional.
type Filters struct {
	Statuses      []string
	Resolutions   []string
	Severities    []string
	Types         []string
	Languages     []string
	Tags          []string
	Branch        string
	PullRequest   string
	CreatedAfter  string
	CreatedBefore string
}

type issueJSON struct {
	Key          string     `json:"key"`
	Rule         string     `json:"rule"`
	Type         string     `json:"type"`
	Severity     string     `json:"severity"`
	Status       string     `json:"status"`
	Resolution   string     `json:"resolution"`
	Message      string     `json:"message"`
	Project      string     `json:"project"`
	Branch       string     `json:"branch"`
	PullRequest  string     `json:"pullRequest"`
	Component    string     `json:"component"`
	Line         int        `json:"line"`
	Effort       string     `json:"effort"`
	Author       string     `json:"author"`
	Assignee     string     `json:"assignee"`
	Hash         string     `json:"hash"`
	CreationDate string     `json:"creationDate"`
	UpdateDate   string     `json:"updateDate"`
	TextRange    *TextRange `json:"textRange"`
	Comments     []Comment  `json:"comments"`

	// The sonarqube/api/issues/export endpoint renames a few fields.
	ProjectKey string `json:"projectKey"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func (ij issueJSON) toFinding() *Finding {
	f := &Finding{
		Key:         ij.Key,
		Rule:        ij.Rule,
		Type:        ij.Type,
		Severity:    ij.Severity,
		Status:      ij.Status,
		Resolution:  ij.Resolution,
		Message:     ij.Message,
		ProjectKey:  ij.Project,
		Branch:      strings.TrimPrefix(ij.Branch, "BRANCH:"),
		PullRequest: ij.PullRequest,
		Component:   ij.Component,
		Line:        ij.Line,
		Effort:      ij.Effort,
		Author:      ij.Author,
		Assignee:    ij.Assignee,
		Hash:        ij.Hash,
		TextRange:   ij.TextRange,
		comments:    ij.Comments,
	}
	if f.ProjectKey == "" {
		f.ProjectKey = ij.ProjectKey
	}
	created, updated := ij.CreationDate, ij.UpdateDate
	if created == "" {
		created = ij.CreatedAt
	}
	if updated == "" {
		updated = ij.UpdatedAt
	}
	if t, err := utils.ParseDate(created); err == nil {
		f.CreationDate = t
	}
	if t, err := utils.ParseDate(updated); err == nil {
		f.UpdateDate = t
	}
	return f
}

func (filters Filters) params() url.Values {
	params := url.Values{}
	set := func(key string, values []string) {
		if len(values) > 0 {
			params.Set(key, utils.ListToCSV(values))
		}
	}
	set("statuses", filters.Statuses)
	set("resolutions", filters.Resolutions)
	set("severities", filters.Severities)
	set("types", filters.Types)
	set("languages", filters.Languages)
	set("tags", filters.Tags)
	if filters.Branch != "" {
		params.Set("branch", filters.Branch)
	}
	if filters.PullRequest != "" {
		params.Set("pullRequest", filters.PullRequest)
	}
	if filters.CreatedAfter != "" {
		params.Set("createdAfter", filters.CreatedAfter)
	}
	if filters.CreatedBefore != "" {
		params.Set("createdBefore", filters.CreatedBefore)
	}
	return params
}

// SearchIssues returns all issues of a project matching the filters
func SearchIssues(ctx context.Context, client *sonar.Client, projectKey string, filters Filters) ([]*Finding, error) {
	var all []*Finding
	page := 1
	for {
		params := filters.params()
		params.Set("componentKeys", projectKey)
		params.Set("ps", strconv.Itoa(sonar.APIPageSize))
		params.Set("p", strconv.Itoa(page))
		var payload struct {
			Paging sonar.Paging `json:"paging"`
			Issues []issueJSON  `json:"issues"`
		}
		if err := client.Get(ctx, "issues/search", params, &payload); err != nil {
			return nil, err
		}
		for _, ij := range payload.Issues {
			all = append(all, ij.toFinding())
		}
		if page >= sonar.Pages(payload.Paging.Total) {
			break
		}
		page++
	}
	return all, nil
}

// SearchHotspots returns all security hotspots of a project
func SearchHotspots(ctx context.Context, client *sonar.Client, projectKey string, filters Filters) ([]*Finding, error) {
	var all []*Finding
	page := 1
	for {
		params := url.Values{}
		params.Set("projectKey", projectKey)
		params.Set("ps", strconv.Itoa(sonar.APIPageSize))
		params.Set("p", strconv.Itoa(page))
		if filters.Branch != "" {
			params.Set("branch", filters.Branch)
		}
		if filters.PullRequest != "" {
			params.Set("pullRequest", filters.PullRequest)
		}
		var payload struct {
			Paging   sonar.Paging `json:"paging"`
			Hotspots []struct {
				Key          string     `json:"key"`
				RuleKey      string     `json:"ruleKey"`
				Status       string     `json:"status"`
				Resolution   string     `json:"resolution"`
				Message      string     `json:"message"`
				Project      string     `json:"project"`
				Component    string     `json:"component"`
				Line         int        `json:"line"`
				Author       string     `json:"author"`
				CreationDate string     `json:"creationDate"`
				UpdateDate   string     `json:"updateDate"`
				TextRange    *TextRange `json:"textRange"`
			} `json:"hotspots"`
		}
		if err := client.Get(ctx, "hotspots/search", params, &payload); err != nil {
			return nil, err
		}
		for _, hj := range payload.Hotspots {
			f := &Finding{
				Key:         hj.Key,
				Rule:        hj.RuleKey,
				Type:        TypeSecurityHotspot,
				Status:      hj.Status,
				Resolution:  hj.Resolution,
				Message:     hj.Message,
				ProjectKey:  hj.Project,
				Component:   hj.Component,
				Line:        hj.Line,
				Author:      hj.Author,
				Branch:      filters.Branch,
				PullRequest: filters.PullRequest,
				TextRange:   hj.TextRange,
			}
			if t, err := utils.ParseDate(hj.CreationDate); err == nil {
				f.CreationDate = t
			}
			if t, err := utils.ParseDate(hj.UpdateDate); err == nil {
				f.UpdateDate = t
			}
			all = append(all, f)
		}
		if page >= sonar.Pages(payload.Paging.Total) {
			break
		}
		page++
	}
	return all, nil
}

// Export returns all findings (issues and hotspots) of a project
func Export(ctx context.Context, client *sonar.Client, projectKey string, filters Filters) ([]*Finding, error) {
	issues, err := SearchIssues(ctx, client, projectKey, filters)
	if err != nil {
		return nil, err
	}
	hotspots, err := SearchHotspots(ctx, client, projectKey, filters)
	if err != nil {
		return nil, err
	}
	return append(issues, hotspots...), nil
}

// PostSearchFilter applies the filters the Web API cannot evaluate
// server side: language restriction and creation date windows
func PostSearchFilter(list []*Finding, filters Filters) []*Finding {
	var minDate, maxDate time.Time
	if filters.CreatedAfter != "" {
		minDate, _ = utils.ParseDate(filters.CreatedAfter)
	}
	if filters.CreatedBefore != "" {
		maxDate, _ = utils.ParseDate(filters.CreatedBefore)
	}
	var filtered []*Finding
	for _, f := range list {
		if len(filters.Languages) > 0 && !utils.ContainsString(filters.Languages, f.Language) {
			continue
		}
		if !minDate.IsZero() && f.CreationDate.Before(minDate) {
			continue
		}
		if !maxDate.IsZero() && f.CreationDate.After(maxDate) {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}
