// Package settings provides access to SonarQube global and project settings.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/internal/utils"
)

// Setting is one platform setting, global or attached to a component
type Setting struct {
	Key       string
	Value     string
	Values    []string
	Inherited bool
	Component string
}

// UUID identifies a setting: the key alone for global settings,
// key#component otherwise
func (s *Setting) UUID() string {
	if s.Component == "" {
		return s.Key
	}
	return fmt.Sprintf("%s#%s", s.Key, s.Component)
}

func (s *Setting) String() string {
	if s.Component == "" {
		return fmt.Sprintf("setting '%s'", s.Key)
	}
	return fmt.Sprintf("setting '%s' of component '%s'", s.Key, s.Component)
}

type settingJSON struct {
	Key          string          `json:"key"`
	Value        string          `json:"value"`
	Values       []string        `json:"values"`
	Inherited    *bool           `json:"inherited"`
	ParentValue  json.RawMessage `json:"parentValue"`
	ParentValues json.RawMessage `json:"parentValues"`
}

func (sj settingJSON) toSetting(component string) Setting {
	s := Setting{
		Key:       sj.Key,
		Value:     sj.Value,
		Values:    sj.Values,
		Component: component,
	}
	if sj.Inherited != nil {
		s.Inherited = *sj.Inherited
	} else if sj.ParentValue != nil || sj.ParentValues != nil {
		s.Inherited = false
	}
	return s
}

// GetBulk retrieves several settings at once, keyed by setting UUID.
// An empty keys list returns every setting; a non-empty component
// restricts the lookup to that component.
func GetBulk(ctx context.Context, client *sonar.Client, keys []string, component string) (map[string]Setting, error) {
	params := url.Values{}
	if len(keys) > 0 {
		params.Set("keys", utils.ListToCSV(keys))
	}
	if component != "" {
		params.Set("component", component)
	}
	var payload struct {
		Settings []settingJSON `json:"settings"`
	}
	if err := client.Get(ctx, "settings/values", params, &payload); err != nil {
		return nil, err
	}
	result := make(map[string]Setting, len(payload.Settings))
	for _, sj := range payload.Settings {
		s := sj.toSetting(component)
		result[s.UUID()] = s
	}
	return result, nil
}

// Set writes one setting on the platform
func Set(ctx context.Context, client *sonar.Client, key, value, component string) error {
	params := url.Values{}
	params.Set("key", key)
	params.Set("value", value)
	if component != "" {
		params.Set("component", component)
	}
	return client.Post(ctx, "settings/set", params)
}
