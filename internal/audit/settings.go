package audit

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Audit configuration keys
const (
	SettingQGMaxConditions         = "audit.qualitygates.maxConditions"
	SettingQGMaxGates              = "audit.qualitygates.maxNumber"
	SettingProjectPermissions      = "audit.projects.permissions"
	SettingPermMaxUsers            = "audit.projects.permissions.maxUsers"
	SettingPermMaxAdminUsers       = "audit.projects.permissions.maxAdminUsers"
	SettingPermMaxGroups           = "audit.projects.permissions.maxGroups"
	SettingPermMaxScanGroups       = "audit.projects.permissions.maxScanGroups"
	SettingPermMaxIssueAdmGroups   = "audit.projects.permissions.maxIssueAdminGroups"
	SettingPermMaxHotspotAdmGroups = "audit.projects.permissions.maxHotspotAdminGroups"
	SettingPermMaxAdminGroups      = "audit.projects.permissions.maxAdminGroups"
)

// Settings holds the audit thresholds and toggles
type Settings map[string]interface{}

// DefaultSettings returns the built-in audit configuration
func DefaultSettings() Settings {
	return Settings{
		SettingQGMaxConditions:         8,
		SettingQGMaxGates:              5,
		SettingProjectPermissions:      true,
		SettingPermMaxUsers:            5,
		SettingPermMaxAdminUsers:       2,
		SettingPermMaxGroups:           5,
		SettingPermMaxScanGroups:       1,
		SettingPermMaxIssueAdmGroups:   1,
		SettingPermMaxHotspotAdmGroups: 1,
		SettingPermMaxAdminGroups:      2,
	}
}

// LoadSettings reads an audit configuration file and overlays it on the
// defaults. The file is JSON with comments allowed.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit settings %s: %w", path, err)
	}
	var overrides map[string]interface{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse audit settings %s: %w", path, err)
	}
	for k, v := range overrides {
		settings[k] = v
	}
	return settings, nil
}

// GetInt returns an integer setting, falling back to def when absent or
// not a number
func (s Settings) GetInt(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// GetBool returns a boolean setting, falling back to def when absent
func (s Settings) GetBool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}
