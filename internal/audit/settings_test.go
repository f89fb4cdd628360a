package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	require.Equal(t, 8, settings.GetInt(SettingQGMaxConditions, 0))
	require.Equal(t, 5, settings.GetInt(SettingQGMaxGates, 0))
	require.True(t, settings.GetBool(SettingProjectPermissions, false))
}

func TestLoadSettingsOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sonar-audit.jsonc")
	content := `{
	// relax the quality gate checks
	"audit.qualitygates.maxConditions": 12,
	"audit.projects.permissions": false,
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, 12, settings.GetInt(SettingQGMaxConditions, 0))
	require.False(t, settings.GetBool(SettingProjectPermissions, true))
	// untouched defaults remain
	require.Equal(t, 5, settings.GetInt(SettingQGMaxGates, 0))
}

func TestLoadSettingsEmptyPathReturnsDefaults(t *testing.T) {
	settings, err := LoadSettings("")
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), settings)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := LoadSettings("/does/not/exist.jsonc")
	require.Error(t, err)
}

func TestGetIntFallsBack(t *testing.T) {
	settings := Settings{"key": "not a number"}
	require.Equal(t, 7, settings.GetInt("key", 7))
	require.Equal(t, 7, settings.GetInt("missing", 7))
}

func TestNewProblemFormatsRuleMessage(t *testing.T) {
	p := NewProblem(QGTooManyGates, "", 9, 5)
	require.Equal(t, SeverityMedium, p.Severity)
	require.Equal(t, TypeGovernance, p.Type)
	require.Contains(t, p.Message, "9 quality gates")
	require.Contains(t, p.Message, "5 recommended maximum")
}

func TestGetRuleUnknownID(t *testing.T) {
	rule := GetRule(RuleID("NOT_A_RULE"))
	require.Equal(t, SeverityMedium, rule.Severity)
}
