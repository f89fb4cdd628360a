// Package findings provides the SonarQube findings abstraction.
// A finding is a general concept covering both issues and security hotspots.
package findings

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"sonartools.dev/sonar-tools/internal/utils"
)

// Finding types
const (
	TypeBug             = "BUG"
	TypeVulnerability   = "VULNERABILITY"
	TypeCodeSmell       = "CODE_SMELL"
	TypeSecurityHotspot = "SECURITY_HOTSPOT"
)

// CSVFields is the fixed column order of the CSV export
var CSVFields = []string{
	"key",
	"rule",
	"type",
	"severity",
	"status",
	"creationDate",
	"updateDate",
	"projectKey",
	"projectName",
	"branch",
	"pullRequest",
	"file",
	"line",
	"effort",
	"message",
}

// statusConversion normalizes legacy statuses to their modern names
var statusConversion = map[string]string{
	"WONTFIX":  "ACCEPTED",
	"REOPENED": "OPEN",
	"REMOVED":  "FIXED",
}

var (
	branchSuffixRe = regexp.MustCompile(`(^.*):BRANCH:`)
	prSuffixRe     = regexp.MustCompile(`(^.*):PULL_REQUEST:`)
)

// TextRange locates a finding within its file
type TextRange struct {
	StartLine   int `json:"startLine"`
	StartOffset int `json:"startOffset"`
	EndLine     int `json:"endLine"`
	EndOffset   int `json:"endOffset"`
}

// ChangelogEntry is one change of a finding
type ChangelogEntry struct {
	User string `json:"user"`
	Date string `json:"creationDate"`
}

// Comment is one comment on a finding
type Comment struct {
	User    string `json:"login"`
	Message string `json:"markdown"`
}

// Finding is one issue or security hotspot
type Finding struct {
	Key          string
	Rule         string
	Type         string
	Severity     string
	Status       string
	Resolution   string
	Message      string
	ProjectKey   string
	ProjectName  string
	Branch       string
	PullRequest  string
	Component    string
	Path         string
	Line         int
	Effort       string
	Author       string
	Assignee     string
	Language     string
	Hash         string
	CreationDate time.Time
	UpdateDate   time.Time
	TextRange    *TextRange

	changelog []ChangelogEntry
	comments  []Comment
}

func (f *Finding) String() string {
	return fmt.Sprintf("finding %s", f.Key)
}

// IsBug reports whether the finding is a bug
func (f *Finding) IsBug() bool { return f.Type == TypeBug }

// IsVulnerability reports whether the finding is a vulnerability
func (f *Finding) IsVulnerability() bool { return f.Type == TypeVulnerability }

// IsCodeSmell reports whether the finding is a code smell
func (f *Finding) IsCodeSmell() bool { return f.Type == TypeCodeSmell }

// IsHotspot reports whether the finding is a security hotspot
func (f *Finding) IsHotspot() bool { return f.Type == TypeSecurityHotspot }

// IsSecurityIssue reports whether the finding is security related
func (f *Finding) IsSecurityIssue() bool { return f.IsVulnerability() || f.IsHotspot() }

// IsClosed reports whether the finding is closed
func (f *Finding) IsClosed() bool { return f.Status == "CLOSED" }

// File returns the finding file path relative to the project root.
// Component keys on branches and pull requests carry :BRANCH:<name> or
// :PULL_REQUEST:<id> segments that must be stripped first.
func (f *Finding) File() string {
	if f.Path != "" {
		return f.Path
	}
	comp := f.Component
	if m := branchSuffixRe.FindStringSubmatch(comp); m != nil {
		comp = m[1]
	}
	if m := prSuffixRe.FindStringSubmatch(comp); m != nil {
		comp = m[1]
	}
	if comp == "" {
		return ""
	}
	parts := strings.Split(comp, ":")
	return parts[len(parts)-1]
}

// ExportStatus returns the status to export: the resolution when one is
// set, normalized to modern status names
func (f *Finding) ExportStatus() string {
	status := f.Status
	if f.Resolution != "" {
		status = f.Resolution
	}
	if converted, ok := statusConversion[status]; ok {
		return converted
	}
	return status
}

// ToMap returns the finding as a flat map for the JSON export.
// Empty fields are omitted.
func (f *Finding) ToMap(withoutTime bool) map[string]interface{} {
	data := map[string]interface{}{
		"key":          f.Key,
		"rule":         f.Rule,
		"type":         f.Type,
		"severity":     f.Severity,
		"status":       f.ExportStatus(),
		"message":      f.Message,
		"projectKey":   f.ProjectKey,
		"projectName":  f.ProjectName,
		"branch":       f.Branch,
		"pullRequest":  f.PullRequest,
		"file":         f.File(),
		"effort":       f.Effort,
		"author":       f.Author,
		"creationDate": utils.FormatDate(f.CreationDate, !withoutTime),
		"updateDate":   utils.FormatDate(f.UpdateDate, !withoutTime),
	}
	if f.Line > 0 {
		data["line"] = f.Line
	}
	if len(f.comments) > 0 {
		data["comments"] = f.comments
	}
	for k, v := range data {
		if s, ok := v.(string); ok && s == "" {
			delete(data, k)
		}
	}
	return data
}

// ToCSVRecord returns the finding as a CSV record in CSVFields order
func (f *Finding) ToCSVRecord(separator string, withoutTime bool) []string {
	data := f.ToMap(withoutTime)
	record := make([]string, len(CSVFields))
	for i, field := range CSVFields {
		v, ok := data[field]
		if !ok {
			continue
		}
		val := fmt.Sprintf("%v", v)
		if field == "branch" || field == "message" {
			val = utils.Quote(val, separator)
		}
		record[i] = val
	}
	return record
}

// CSVHeader returns the header line of the CSV export
func CSVHeader(separator string) string {
	return "# " + strings.Join(CSVFields, separator)
}

// ToSARIF returns the finding as a SARIF result object. When full is true
// all exported properties are attached under properties.
func (f *Finding) ToSARIF(baseURL string, full bool) map[string]interface{} {
	level := "warning"
	if f.IsBug() || f.IsVulnerability() || f.Severity == "CRITICAL" || f.Severity == "BLOCKER" {
		level = "error"
	}
	properties := map[string]interface{}{"url": f.URL(baseURL)}
	if full {
		for k, v := range f.ToMap(false) {
			properties[k] = v
		}
	}
	rg := f.TextRange
	if rg == nil {
		rg = &TextRange{StartLine: 1, StartOffset: 1, EndLine: 1, EndOffset: 1}
	}
	return map[string]interface{}{
		"level":      level,
		"ruleId":     f.Rule,
		"message":    map[string]string{"text": f.Message},
		"properties": properties,
		"locations": []map[string]interface{}{
			{
				"physicalLocation": map[string]interface{}{
					"artifactLocation": map[string]interface{}{
						"uri":   "file:///" + f.File(),
						"index": 0,
					},
					"region": map[string]int{
						"startLine":   max(rg.StartLine, 1),
						"startColumn": max(rg.StartOffset, 1),
						"endLine":     max(rg.EndLine, 1),
						"endColumn":   max(rg.EndOffset, 1),
					},
				},
			},
		},
	}
}

// URL returns the platform URL of the finding
func (f *Finding) URL(baseURL string) string {
	if f.IsHotspot() {
		return fmt.Sprintf("%s/security_hotspots?id=%s&hotspots=%s", baseURL, f.ProjectKey, f.Key)
	}
	return fmt.Sprintf("%s/project/issues?id=%s&issues=%s&open=%s", baseURL, f.ProjectKey, f.Key, f.Key)
}

// Changelog returns the collected changelog of the finding
func (f *Finding) Changelog() []ChangelogEntry {
	return f.changelog
}

// Comments returns the collected comments of the finding
func (f *Finding) Comments() []Comment {
	return f.comments
}

// HasChangelog reports whether the finding changed after addedAfter
// (zero time means any change counts)
func (f *Finding) HasChangelog(addedAfter time.Time) bool {
	if !addedAfter.IsZero() && addedAfter.After(f.UpdateDate) {
		return false
	}
	return len(f.changelog) > 0
}

// Modifiers returns the set of users that modified the finding
func (f *Finding) Modifiers() map[string]bool {
	users := make(map[string]bool)
	for _, c := range f.changelog {
		if c.User != "" {
			users[c.User] = true
		}
	}
	return users
}
