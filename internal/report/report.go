// Package report renders an executive summary of a configuration export
// as Markdown, HTML or styled terminal output.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed template.md
var templateText string

// fields is the flattened view of a Config handed to the template
type fields struct {
	ServerVersion  string
	ServerURL      string
	ProjectCount   int
	LinesOfCode    int
	UserCount      int
	SASTConfigured string
	OrphanIssues   int
	AcceptedIssues int
	FalsePositives int
	SafeHotspots   int
	FixedHotspots  int

	DevopsBindings      string
	Pipelines           string
	PermissionTemplates string
	QualityProfiles     string
	QualityGates        string
	Applications        string
	Portfolios          string
	Plugins             string
	ProjectMetrics      string
}

// Render fills the report template from a configuration export and returns
// raw Markdown
func Render(cfg *Config) (string, error) {
	tmpl, err := template.New("report").Parse(templateText)
	if err != nil {
		return "", fmt.Errorf("parsing report template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, buildFields(cfg)); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

// RenderHTML renders the report and converts it to HTML with table support
func RenderHTML(cfg *Config) (string, error) {
	md, err := Render(cfg)
	if err != nil {
		return "", err
	}
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := converter.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("converting report to HTML: %w", err)
	}
	return buf.String(), nil
}

// RenderTerminal renders the report styled for an ANSI terminal
func RenderTerminal(cfg *Config) (string, error) {
	md, err := Render(cfg)
	if err != nil {
		return "", err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering report for terminal: %w", err)
	}
	return out, nil
}

func buildFields(cfg *Config) fields {
	gateProjects := map[string][]string{}
	profileProjects := map[string][]string{}
	ciProjects := map[string][]string{}
	devopsProjects := map[string][]string{}
	linesOfCode := 0
	orphans := 0
	accepted := 0
	falsePositives := 0
	safeHotspots := 0
	fixedHotspots := 0

	for _, p := range cfg.Projects {
		linesOfCode += p.Ncloc.Total
		orphans += p.Issues.InstantiatedRules + p.Issues.ThirdPartyTotal()
		accepted += p.Issues.Accepted
		falsePositives += p.Issues.FalsePositives
		safeHotspots += p.Hotspots.Safe
		fixedHotspots += p.Hotspots.Fixed
		if p.QualityGate != "" {
			gateProjects[p.QualityGate] = append(gateProjects[p.QualityGate], p.Name)
		}
		for lang, profile := range p.QualityProfiles {
			profileProjects[lang+profile] = append(profileProjects[lang+profile], p.Name)
		}
		if ci := p.DetectedCI; ci != "" && ci != "unknown" && ci != "undetected" {
			ciProjects[ci] = append(ciProjects[ci], p.Name)
		}
		if p.Binding.Key != "" {
			devopsProjects[p.Binding.Key] = append(devopsProjects[p.Binding.Key], p.Name)
		}
	}

	return fields{
		ServerVersion:  fmt.Sprintf("%s %s", cfg.Platform.Edition, cfg.Platform.Version),
		ServerURL:      cfg.Platform.URL,
		ProjectCount:   len(cfg.Projects),
		LinesOfCode:    linesOfCode,
		UserCount:      len(cfg.Users),
		SASTConfigured: sastStatus(cfg),
		OrphanIssues:   orphans,
		AcceptedIssues: accepted,
		FalsePositives: falsePositives,
		SafeHotspots:   safeHotspots,
		FixedHotspots:  fixedHotspots,

		DevopsBindings:      devopsRows(cfg, devopsProjects),
		Pipelines:           countRows(ciProjects),
		PermissionTemplates: permissionTemplateRows(cfg),
		QualityProfiles:     profileRows(cfg, profileProjects),
		QualityGates:        countRows(gateProjects),
		Applications:        applicationRows(cfg),
		Portfolios:          portfolioRows(cfg),
		Plugins:             pluginRows(cfg),
		ProjectMetrics:      projectMetricRows(cfg),
	}
}

// sastStatus reports whether any SAST configuration was found, globally or
// on a project
func sastStatus(cfg *Config) string {
	for _, v := range cfg.GlobalSettings.SASTConfig {
		if truthy(v) {
			return "SAST Configuration Detected"
		}
	}
	for _, p := range cfg.Projects {
		if p.SASTConfig {
			return "SAST Configuration Detected"
		}
	}
	return "No SAST Configuration Detected"
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}

// countRows formats "name | project count" rows sorted by name
func countRows(mapping map[string][]string) string {
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, fmt.Sprintf("| %s | %d |", name, len(mapping[name])))
	}
	return strings.Join(rows, "\n")
}

func devopsRows(cfg *Config, devopsProjects map[string][]string) string {
	names := make([]string, 0, len(cfg.GlobalSettings.DevopsIntegration))
	for name := range cfg.GlobalSettings.DevopsIntegration {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, fmt.Sprintf("| %s | %d | | |", name, len(devopsProjects[name])))
	}
	return strings.Join(rows, "\n")
}

func permissionTemplateRows(cfg *Config) string {
	names := make([]string, 0, len(cfg.GlobalSettings.PermissionTemplates))
	for name := range cfg.GlobalSettings.PermissionTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([]string, 0, len(names))
	for _, name := range names {
		t := cfg.GlobalSettings.PermissionTemplates[name]
		rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s |", name, t.Description, t.Pattern, t.DefaultFor))
	}
	return strings.Join(rows, "\n")
}

func profileRows(cfg *Config, profileProjects map[string][]string) string {
	langs := make([]string, 0, len(cfg.QualityProfiles))
	for lang := range cfg.QualityProfiles {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	var rows []string
	for _, lang := range langs {
		names := make([]string, 0, len(cfg.QualityProfiles[lang]))
		for name := range cfg.QualityProfiles[lang] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if cfg.QualityProfiles[lang][name].IsBuiltIn {
				continue
			}
			rows = append(rows, fmt.Sprintf("| %s | %s | | | %d |", name, lang, len(profileProjects[lang+name])))
		}
	}
	return strings.Join(rows, "\n")
}

func applicationRows(cfg *Config) string {
	keys := make([]string, 0, len(cfg.Applications))
	for key := range cfg.Applications {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([]string, 0, len(keys))
	for _, key := range keys {
		app := cfg.Applications[key]
		seen := map[string]bool{}
		for _, branch := range app.Branches {
			for project := range branch.Projects {
				seen[project] = true
			}
		}
		rows = append(rows, fmt.Sprintf("| %s | %d |", app.Name, len(seen)))
	}
	return strings.Join(rows, "\n")
}

func portfolioRows(cfg *Config) string {
	keys := make([]string, 0, len(cfg.Portfolios))
	for key := range cfg.Portfolios {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, fmt.Sprintf("| %s | | |", cfg.Portfolios[key].Name))
	}
	return strings.Join(rows, "\n")
}

// pluginRows parses plugin entries of the form "version [name]"
func pluginRows(cfg *Config) string {
	keys := make([]string, 0, len(cfg.Platform.Plugins))
	for key := range cfg.Platform.Plugins {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([]string, 0, len(keys))
	for _, key := range keys {
		entry := cfg.Platform.Plugins[key]
		name := entry
		version := ""
		if i := strings.Index(entry, "["); i >= 0 {
			version = strings.TrimSpace(entry[:i])
			name = strings.TrimSuffix(entry[i+1:], "]")
		}
		rows = append(rows, fmt.Sprintf("| %s | | %s | |", name, version))
	}
	return strings.Join(rows, "\n")
}

// projectMetricRows lists projects carrying issues from instantiated or
// third party rules, the ones a migration would leave behind
func projectMetricRows(cfg *Config) string {
	keys := make([]string, 0, len(cfg.Projects))
	for key := range cfg.Projects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var rows []string
	for _, key := range keys {
		p := cfg.Projects[key]
		templateIssues := p.Issues.InstantiatedRules
		pluginIssues := p.Issues.ThirdPartyTotal()
		if templateIssues+pluginIssues == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("| %s | %d | %d | %s |", p.Name, templateIssues, pluginIssues, p.Binding.Key))
	}
	return strings.Join(rows, "\n")
}
