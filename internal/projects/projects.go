// Package projects provides access to SonarQube projects and their branches.
package projects

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/internal/utils"
)

// Project is a SonarQube project
type Project struct {
	Key          string
	Name         string
	Visibility   string
	LastAnalysis time.Time
}

// Branch is one branch of a project
type Branch struct {
	ProjectKey   string
	ProjectName  string
	Name         string
	IsMain       bool
	LastAnalysis time.Time
}

// URL returns the project dashboard URL
func (p *Project) URL(baseURL string) string {
	return fmt.Sprintf("%s/dashboard?id=%s", baseURL, url.QueryEscape(p.Key))
}

// URL returns the branch dashboard URL
func (b *Branch) URL(baseURL string) string {
	return fmt.Sprintf("%s/dashboard?id=%s&branch=%s", baseURL, url.QueryEscape(b.ProjectKey), url.QueryEscape(b.Name))
}

// LastAnalysisString renders the last analysis date, "Never" when the
// project was never analyzed
func LastAnalysisString(t time.Time, withTime bool) string {
	if t.IsZero() {
		return "Never"
	}
	return utils.FormatDate(t, withTime)
}

type projectJSON struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Visibility   string `json:"visibility"`
	LastAnalysis string `json:"lastAnalysisDate"`
}

func (pj projectJSON) toProject() Project {
	p := Project{Key: pj.Key, Name: pj.Name, Visibility: pj.Visibility}
	if pj.LastAnalysis != "" {
		if t, err := utils.ParseDate(pj.LastAnalysis); err == nil {
			p.LastAnalysis = t
		}
	}
	return p
}

// Search lists projects. When keys is non-empty the search is restricted
// to those project keys.
func Search(ctx context.Context, client *sonar.Client, keys []string) ([]Project, error) {
	var all []Project
	page := 1
	for {
		params := url.Values{}
		params.Set("ps", strconv.Itoa(sonar.APIPageSize))
		params.Set("p", strconv.Itoa(page))
		params.Set("qualifiers", "TRK")
		if len(keys) > 0 {
			params.Set("projects", utils.ListToCSV(keys))
		}
		var payload struct {
			Paging     sonar.Paging  `json:"paging"`
			Components []projectJSON `json:"components"`
		}
		if err := client.Get(ctx, "projects/search", params, &payload); err != nil {
			return nil, err
		}
		for _, pj := range payload.Components {
			all = append(all, pj.toProject())
		}
		if page >= sonar.Pages(payload.Paging.Total) {
			break
		}
		page++
	}
	return all, nil
}

// Get returns one project by key
func Get(ctx context.Context, client *sonar.Client, key string) (*Project, error) {
	found, err := Search(ctx, client, []string{key})
	if err != nil {
		return nil, err
	}
	for i := range found {
		if found[i].Key == key {
			return &found[i], nil
		}
	}
	return nil, fmt.Errorf("project %q not found", key)
}

// Branches lists the branches of a project
func Branches(ctx context.Context, client *sonar.Client, project Project) ([]Branch, error) {
	params := url.Values{}
	params.Set("project", project.Key)
	var payload struct {
		Branches []struct {
			Name         string `json:"name"`
			IsMain       bool   `json:"isMain"`
			AnalysisDate string `json:"analysisDate"`
		} `json:"branches"`
	}
	if err := client.Get(ctx, "project_branches/list", params, &payload); err != nil {
		return nil, err
	}
	branches := make([]Branch, 0, len(payload.Branches))
	for _, b := range payload.Branches {
		branch := Branch{
			ProjectKey:  project.Key,
			ProjectName: project.Name,
			Name:        b.Name,
			IsMain:      b.IsMain,
		}
		if b.AnalysisDate != "" {
			if t, err := utils.ParseDate(b.AnalysisDate); err == nil {
				branch.LastAnalysis = t
			}
		}
		branches = append(branches, branch)
	}
	return branches, nil
}
