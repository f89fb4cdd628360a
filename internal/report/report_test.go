package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func reportConfig() *Config {
	return &Config{
		Platform: Platform{
			URL:     "https://sonar.example.com",
			Version: "10.4.1",
			Edition: "enterprise",
			Plugins: map[string]string{
				"java":     "8.9 [Java]",
				"cayc":     "Clean as You Code",
				"findbugs": "4.2.3 [Findbugs]",
			},
		},
		GlobalSettings: GlobalSettings{
			SASTConfig: map[string]interface{}{
				"sonar.security.config": false,
			},
			DevopsIntegration: map[string]interface{}{
				"github-main": map[string]interface{}{"type": "github"},
			},
			PermissionTemplates: map[string]PermissionTemplate{
				"Default template": {
					Description: "Applies to all projects",
					Pattern:     ".*",
					DefaultFor:  "projects",
				},
			},
		},
		Projects: map[string]ProjectConfig{
			"backend": {
				Name:        "Backend",
				QualityGate: "Sonar way",
				QualityProfiles: map[string]string{
					"java": "Company Java",
				},
				DetectedCI: "Jenkins",
				Binding:    Binding{Key: "github-main"},
				Ncloc:      NclocSection{Total: 120000},
				Issues: IssuesSection{
					InstantiatedRules: 3,
					ThirdParty:        map[string]int{"findbugs": 7},
					Accepted:          12,
					FalsePositives:    4,
				},
				Hotspots:   HotspotsSection{Safe: 5, Fixed: 2},
				SASTConfig: true,
			},
			"frontend": {
				Name:        "Frontend",
				QualityGate: "Sonar way",
				DetectedCI:  "unknown",
				Ncloc:       NclocSection{Total: 30000},
			},
		},
		Users: map[string]interface{}{
			"alice": nil,
			"bob":   nil,
		},
		QualityProfiles: map[string]map[string]Profile{
			"java": {
				"Sonar way":    {IsBuiltIn: true},
				"Company Java": {IsBuiltIn: false},
			},
		},
		Applications: map[string]Application{
			"my-app": {
				Name: "My App",
				Branches: map[string]ApplicationBranch{
					"main":    {Projects: map[string]interface{}{"backend": nil, "frontend": nil}},
					"release": {Projects: map[string]interface{}{"backend": nil}},
				},
			},
		},
		Portfolios: map[string]Portfolio{
			"all": {Name: "Everything"},
		},
	}
}

func TestBuildFields(t *testing.T) {
	f := buildFields(reportConfig())

	require.Equal(t, "enterprise 10.4.1", f.ServerVersion)
	require.Equal(t, "https://sonar.example.com", f.ServerURL)
	require.Equal(t, 2, f.ProjectCount)
	require.Equal(t, 150000, f.LinesOfCode)
	require.Equal(t, 2, f.UserCount)
	require.Equal(t, 10, f.OrphanIssues)
	require.Equal(t, 12, f.AcceptedIssues)
	require.Equal(t, 4, f.FalsePositives)
	require.Equal(t, 5, f.SafeHotspots)
	require.Equal(t, 2, f.FixedHotspots)
	require.Equal(t, "SAST Configuration Detected", f.SASTConfigured)

	// Both projects use the same gate
	require.Contains(t, f.QualityGates, "| Sonar way | 2 |")
	// Detected CI "unknown" is filtered out
	require.Equal(t, "| Jenkins | 1 |", f.Pipelines)
	require.Contains(t, f.DevopsBindings, "| github-main | 1 |")
	require.Contains(t, f.PermissionTemplates, "| Default template | Applies to all projects | .* | projects |")
	// Built-in profiles are excluded
	require.Equal(t, "| Company Java | java | | | 1 |", f.QualityProfiles)
	// Application project counts are unique across branches
	require.Equal(t, "| My App | 2 |", f.Applications)
	require.Equal(t, "| Everything | | |", f.Portfolios)
	// Only projects with template or plugin issues appear
	require.Equal(t, "| Backend | 3 | 7 | github-main |", f.ProjectMetrics)
}

func TestSastStatusNotDetected(t *testing.T) {
	cfg := reportConfig()
	projects := map[string]ProjectConfig{}
	for key, p := range cfg.Projects {
		p.SASTConfig = false
		projects[key] = p
	}
	cfg.Projects = projects
	require.Equal(t, "No SAST Configuration Detected", sastStatus(cfg))

	cfg.GlobalSettings.SASTConfig["sonar.security.config"] = "enabled"
	require.Equal(t, "SAST Configuration Detected", sastStatus(cfg))
}

func TestPluginRows(t *testing.T) {
	rows := pluginRows(reportConfig())
	// "version [name]" entries are split, plain entries keep their text
	require.Contains(t, rows, "| Java | | 8.9 | |")
	require.Contains(t, rows, "| Findbugs | | 4.2.3 | |")
	require.Contains(t, rows, "| Clean as You Code | |  | |")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(reportConfig())
	require.NoError(t, err)
	require.Contains(t, out, "enterprise 10.4.1")
	require.Contains(t, out, "https://sonar.example.com")
	require.Contains(t, out, "| Sonar way | 2 |")
	require.Contains(t, out, "| Backend | 3 | 7 | github-main |")
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(reportConfig())
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "enterprise 10.4.1")
}
