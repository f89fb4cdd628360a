package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sonartools.dev/sonar-tools/internal/audit"
	"sonartools.dev/sonar-tools/internal/config"
	"sonartools.dev/sonar-tools/internal/measures"
	"sonartools.dev/sonar-tools/internal/output"
	"sonartools.dev/sonar-tools/internal/projects"
	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/testhelpers"
)

func TestRootHelpListsCommands(t *testing.T) {
	root := NewRootCmd("dev", "none", "unknown")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())
	help := out.String()
	for _, name := range []string{"measures-export", "findings-export", "audit", "config", "report", "loc", "version"} {
		require.Contains(t, help, name)
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd("1.2.3", "abc1234", "2026-08-26")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Equal(t, "sonar-tools 1.2.3 (commit abc1234, built 2026-08-26)\n", out.String())
}

func TestDeduceFindingsFormat(t *testing.T) {
	require.Equal(t, output.FormatSARIF, deduceFindingsFormat("", "results.sarif"))
	require.Equal(t, output.FormatSARIF, deduceFindingsFormat("csv", "results.SARIF"))
	require.Equal(t, output.FormatSARIF, deduceFindingsFormat("sarif", ""))
	require.Equal(t, output.FormatJSON, deduceFindingsFormat("", "results.json"))
	require.Equal(t, output.FormatCSV, deduceFindingsFormat("", ""))
}

func TestDeduceAuditFormat(t *testing.T) {
	require.Equal(t, "text", deduceAuditFormat("", ""))
	require.Equal(t, output.FormatCSV, deduceAuditFormat("", "problems.csv"))
	require.Equal(t, output.FormatJSON, deduceAuditFormat("json", ""))
}

func TestDeduceReportFormat(t *testing.T) {
	require.Equal(t, reportFormatHTML, deduceReportFormat("html", ""))
	require.Equal(t, reportFormatTerminal, deduceReportFormat("terminal", "report.md"))
	// stdout is not a terminal under go test
	require.Equal(t, reportFormatMarkdown, deduceReportFormat("", ""))
	require.Equal(t, reportFormatMarkdown, deduceReportFormat("", "report.md"))
}

func TestConvertOptions(t *testing.T) {
	opts := convertOptions(false, false, false)
	require.Equal(t, measures.RatingsLetters, opts.Ratings)
	require.Equal(t, measures.PercentsFloat, opts.Percents)
	require.Equal(t, measures.DatesDatetime, opts.Dates)

	opts = convertOptions(true, true, true)
	require.Equal(t, measures.RatingsNumbers, opts.Ratings)
	require.Equal(t, measures.PercentsString, opts.Percents)
	require.Equal(t, measures.DatesDateOnly, opts.Dates)
}

func TestSeparatorOrDefault(t *testing.T) {
	sess := &session{cfg: &config.Config{CSVSeparator: ";"}}
	require.Equal(t, ";", separatorOrDefault("", sess))
	require.Equal(t, "|", separatorOrDefault("|", sess))
}

func TestSettingValue(t *testing.T) {
	v, ok := settingValue("single")
	require.True(t, ok)
	require.Equal(t, "single", v)

	v, ok = settingValue([]string{"a", "b"})
	require.True(t, ok)
	require.Equal(t, "a,b", v)

	// JSON arrays decode to []interface{}
	v, ok = settingValue([]interface{}{"**/vendor/**", "**/dist/**"})
	require.True(t, ok)
	require.Equal(t, "**/vendor/**,**/dist/**", v)

	_, ok = settingValue(42)
	require.False(t, ok)
}

func TestImportGlobalSettingsMultiValue(t *testing.T) {
	config := testhelpers.NewMockSonarServerConfig()
	server := testhelpers.NewMockSonarServer(t, config)
	client, err := sonar.NewClient(context.Background(), server.URL, testhelpers.TestToken)
	require.NoError(t, err)

	dump := map[string]interface{}{
		"sonar.core.serverBaseURL": "https://sonar.example.com",
		"sonar.exclusions":         []interface{}{"**/vendor/**", "**/dist/**"},
	}
	require.NoError(t, importGlobalSettings(context.Background(), client, dump))

	posts := config.Posts["/api/settings/set"]
	require.Len(t, posts, 2)
	require.Equal(t, "sonar.core.serverBaseURL", posts[0]["key"])
	require.Equal(t, "https://sonar.example.com", posts[0]["value"])
	require.Equal(t, "sonar.exclusions", posts[1]["key"])
	require.Equal(t, "**/vendor/**,**/dist/**", posts[1]["value"])
}

func TestImportProjectsAppliesPermissions(t *testing.T) {
	config := testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/permissions/users"] = testhelpers.Paged(1, map[string]interface{}{
		"users": []interface{}{
			map[string]interface{}{"login": "alice", "permissions": []string{"admin"}},
		},
	})
	config.Responses["GET /api/permissions/groups"] = testhelpers.Paged(0, map[string]interface{}{
		"groups": []interface{}{},
	})
	server := testhelpers.NewMockSonarServer(t, config)
	client, err := sonar.NewClient(context.Background(), server.URL, testhelpers.TestToken)
	require.NoError(t, err)

	dump := map[string]projectConfig{
		"proj": {
			Name: "My Project",
			Permissions: permissionsConfig{
				Users: map[string][]string{"bob": {"user"}},
			},
		},
		"untouched": {Name: "No permission section"},
	}
	require.NoError(t, importProjects(context.Background(), client, dump))

	removes := config.Posts["/api/permissions/remove_user"]
	require.Len(t, removes, 1)
	require.Equal(t, "alice", removes[0]["login"])
	require.Equal(t, "admin", removes[0]["permission"])

	adds := config.Posts["/api/permissions/add_user"]
	require.Len(t, adds, 1)
	require.Equal(t, "proj", adds[0]["projectKey"])
	require.Equal(t, "bob", adds[0]["login"])
	require.Equal(t, "user", adds[0]["permission"])
}

func TestMeasuresExportCSVLayout(t *testing.T) {
	config := testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/measures/component"] = testhelpers.MeasuresJSON("proj", map[string]string{
		"ncloc": "100",
		"bugs":  "2",
	})
	server := testhelpers.NewMockSonarServer(t, config)
	client, err := sonar.NewClient(context.Background(), server.URL, testhelpers.TestToken)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "measures.csv")
	sink, err := output.NewSink(path)
	require.NoError(t, err)

	exp := measuresExporter{
		format:    output.FormatCSV,
		separator: ",",
		metrics:   []string{"ncloc", "bugs"},
		withURL:   true,
		opts:      measures.DefaultConvertOptions(),
		baseURL:   client.URL(),
		sink:      sink,
	}
	require.NoError(t, exp.begin())
	project := projects.Project{Key: "proj", Name: "My Project"}
	require.NoError(t, exp.write(context.Background(), client, project, ""))
	require.NoError(t, exp.end())
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "# key,name,lastAnalysis,ncloc,bugs,url", lines[0])
	require.Equal(t, "proj,My Project,Never,100,2,"+client.URL()+"/dashboard?id=proj", lines[1])
}

func TestMeasuresExportCSVHeaderWithBranches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measures.csv")
	sink, err := output.NewSink(path)
	require.NoError(t, err)

	exp := measuresExporter{
		format:       output.FormatCSV,
		separator:    ",",
		metrics:      []string{"ncloc"},
		withBranches: true,
		sink:         sink,
	}
	require.NoError(t, exp.begin())
	require.NoError(t, exp.end())
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# key,name,branch,lastAnalysis,ncloc\n", string(data))
}

func TestWriteProblemsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problems.csv")
	sink, err := output.NewSink(path)
	require.NoError(t, err)

	problems := []audit.Problem{
		{
			RuleID:    audit.QGTooManyConditions,
			Severity:  audit.SeverityMedium,
			Type:      audit.TypeGovernance,
			Component: "My Gate",
			Message:   "gate has too many conditions",
		},
	}
	require.NoError(t, writeProblemsCSV(sink, problems, ","))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# severity,type,rule,component,message")
	require.Contains(t, string(data), "MEDIUM,GOVERNANCE,")
	require.Contains(t, string(data), "My Gate,gate has too many conditions")
}
