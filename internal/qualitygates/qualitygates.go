// Package qualitygates provides the SonarQube quality gate abstraction:
// retrieval, create-or-update, and configuration audit.
package qualitygates

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"

	"sonartools.dev/sonar-tools/internal/errors"
	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/internal/utils"
)

// QualityGate is one quality gate of the platform
type QualityGate struct {
	Key        string
	Name       string
	IsDefault  bool
	IsBuiltIn  bool
	Conditions []Condition

	// Permissions to edit the gate, by login and group name
	Users  []string
	Groups []string
}

// Condition is one quality gate condition in API form
type Condition struct {
	ID     string `json:"id"`
	Metric string `json:"metric"`
	Op     string `json:"op"`
	Error  string `json:"error"`
}

func (qg *QualityGate) String() string {
	return fmt.Sprintf("quality gate '%s'", qg.Name)
}

type gateJSON struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	IsDefault bool        `json:"isDefault"`
	IsBuiltIn bool        `json:"isBuiltIn"`
}

// List returns all quality gates with their conditions loaded
func List(ctx context.Context, client *sonar.Client) ([]*QualityGate, error) {
	var payload struct {
		QualityGates []gateJSON `json:"qualitygates"`
	}
	if err := client.Get(ctx, "qualitygates/list", nil, &payload); err != nil {
		return nil, err
	}
	gates := make([]*QualityGate, 0, len(payload.QualityGates))
	for _, gj := range payload.QualityGates {
		qg := &QualityGate{
			Key:       gj.ID.String(),
			Name:      gj.Name,
			IsDefault: gj.IsDefault,
			IsBuiltIn: gj.IsBuiltIn,
		}
		if err := qg.loadConditions(ctx, client); err != nil {
			return nil, err
		}
		if !qg.IsBuiltIn {
			if err := qg.loadPermissions(ctx, client); err != nil {
				return nil, err
			}
		}
		gates = append(gates, qg)
	}
	return gates, nil
}

// Get returns one quality gate by name
func Get(ctx context.Context, client *sonar.Client, name string) (*QualityGate, error) {
	gates, err := List(ctx, client)
	if err != nil {
		return nil, err
	}
	for _, qg := range gates {
		if qg.Name == name {
			return qg, nil
		}
	}
	return nil, errors.NewObjectNotFoundError("quality gate", name)
}

func (qg *QualityGate) loadConditions(ctx context.Context, client *sonar.Client) error {
	params := url.Values{}
	params.Set("name", qg.Name)
	var payload struct {
		Conditions []Condition `json:"conditions"`
	}
	if err := client.Get(ctx, "qualitygates/show", params, &payload); err != nil {
		return err
	}
	qg.Conditions = payload.Conditions
	return nil
}

// loadPermissions reads the users and groups allowed to edit the gate.
// Servers without the permission search endpoints answer 400 or 404,
// treated as no permissions.
func (qg *QualityGate) loadPermissions(ctx context.Context, client *sonar.Client) error {
	params := url.Values{}
	params.Set("gateName", qg.Name)
	params.Set("selected", "selected")

	var users struct {
		Users []struct {
			Login string `json:"login"`
		} `json:"users"`
	}
	if err := client.Get(ctx, "qualitygates/search_users", params, &users); err != nil {
		if permissionsUnsupported(err) {
			return nil
		}
		return err
	}
	qg.Users = qg.Users[:0]
	for _, u := range users.Users {
		qg.Users = append(qg.Users, u.Login)
	}

	var groups struct {
		Groups []struct {
			Name string `json:"name"`
		} `json:"groups"`
	}
	if err := client.Get(ctx, "qualitygates/search_groups", params, &groups); err != nil {
		if permissionsUnsupported(err) {
			return nil
		}
		return err
	}
	qg.Groups = qg.Groups[:0]
	for _, g := range groups.Groups {
		qg.Groups = append(qg.Groups, g.Name)
	}
	return nil
}

func permissionsUnsupported(err error) bool {
	var apiErr *errors.APIError
	return stderrors.As(err, &apiErr) && (apiErr.StatusCode == 400 || apiErr.StatusCode == 404)
}

// ProjectCount returns the number of projects assigned to the gate.
// Some server versions answer 400 or 404 when no project is assigned;
// both are treated as zero.
func (qg *QualityGate) ProjectCount(ctx context.Context, client *sonar.Client) (int, error) {
	params := url.Values{}
	params.Set("gateName", qg.Name)
	params.Set("ps", "1")
	var payload struct {
		Paging sonar.Paging `json:"paging"`
	}
	err := client.Get(ctx, "qualitygates/search", params, &payload)
	if err != nil {
		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) && (apiErr.StatusCode == 400 || apiErr.StatusCode == 404) {
			return 0, nil
		}
		return 0, err
	}
	return payload.Paging.Total, nil
}

// Create creates a quality gate with the given conditions and permissions
func Create(ctx context.Context, client *sonar.Client, name string, conditions []string, users, groups []string) (*QualityGate, error) {
	params := url.Values{}
	params.Set("name", name)
	if err := client.Post(ctx, "qualitygates/create", params); err != nil {
		return nil, err
	}
	qg := &QualityGate{Name: name}
	if err := qg.SetConditions(ctx, client, conditions); err != nil {
		return nil, err
	}
	if err := qg.SetPermissions(ctx, client, users, groups); err != nil {
		return nil, err
	}
	return qg, nil
}

// SetConditions replaces the gate conditions with the given encoded
// conditions ("metric op value" form). Built-in gates are immutable.
func (qg *QualityGate) SetConditions(ctx context.Context, client *sonar.Client, encoded []string) error {
	if len(encoded) == 0 {
		return nil
	}
	if qg.IsBuiltIn {
		return fmt.Errorf("cannot set conditions of built-in %s", qg)
	}
	if err := qg.clearConditions(ctx, client); err != nil {
		return err
	}
	for _, cond := range encoded {
		metric, op, value, err := DecodeCondition(cond)
		if err != nil {
			return err
		}
		params := url.Values{}
		params.Set("gateName", qg.Name)
		params.Set("metric", metric)
		params.Set("op", op)
		params.Set("error", value)
		if err := client.Post(ctx, "qualitygates/create_condition", params); err != nil {
			return err
		}
	}
	return qg.loadConditions(ctx, client)
}

func (qg *QualityGate) clearConditions(ctx context.Context, client *sonar.Client) error {
	for _, c := range qg.Conditions {
		params := url.Values{}
		params.Set("id", c.ID)
		if err := client.Post(ctx, "qualitygates/delete_condition", params); err != nil {
			return err
		}
	}
	qg.Conditions = nil
	return nil
}

// SetPermissions replaces the gate edit permissions with the given users
// and groups. Existing grants not in the new lists are revoked.
func (qg *QualityGate) SetPermissions(ctx context.Context, client *sonar.Client, users, groups []string) error {
	if qg.IsBuiltIn {
		if len(users) > 0 || len(groups) > 0 {
			return fmt.Errorf("cannot set permissions of built-in %s", qg)
		}
		return nil
	}
	for _, u := range qg.Users {
		if utils.ContainsString(users, u) {
			continue
		}
		params := url.Values{}
		params.Set("gateName", qg.Name)
		params.Set("login", u)
		if err := client.Post(ctx, "qualitygates/remove_user", params); err != nil {
			return err
		}
	}
	for _, g := range qg.Groups {
		if utils.ContainsString(groups, g) {
			continue
		}
		params := url.Values{}
		params.Set("gateName", qg.Name)
		params.Set("groupName", g)
		if err := client.Post(ctx, "qualitygates/remove_group", params); err != nil {
			return err
		}
	}
	for _, u := range users {
		params := url.Values{}
		params.Set("gateName", qg.Name)
		params.Set("login", u)
		if err := client.Post(ctx, "qualitygates/add_user", params); err != nil {
			return err
		}
	}
	for _, g := range groups {
		params := url.Values{}
		params.Set("gateName", qg.Name)
		params.Set("groupName", g)
		if err := client.Post(ctx, "qualitygates/add_group", params); err != nil {
			return err
		}
	}
	qg.Users = append(qg.Users[:0], users...)
	qg.Groups = append(qg.Groups[:0], groups...)
	return nil
}

// Rename renames the gate
func (qg *QualityGate) Rename(ctx context.Context, client *sonar.Client, newName string) error {
	params := url.Values{}
	params.Set("id", qg.Key)
	params.Set("name", newName)
	if err := client.Post(ctx, "qualitygates/rename", params); err != nil {
		return err
	}
	qg.Name = newName
	return nil
}

// GateConfig is the import/export form of one quality gate
type GateConfig struct {
	IsDefault  bool     `json:"isDefault,omitempty"`
	IsBuiltIn  bool     `json:"isBuiltIn,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Users      []string `json:"users,omitempty"`
	Groups     []string `json:"groups,omitempty"`
}

// ToConfig returns the gate in its import/export form
func (qg *QualityGate) ToConfig() GateConfig {
	cfg := GateConfig{IsDefault: qg.IsDefault, IsBuiltIn: qg.IsBuiltIn}
	if qg.IsBuiltIn {
		return cfg
	}
	cfg.Conditions = EncodeConditions(qg.Conditions)
	cfg.Users = qg.Users
	cfg.Groups = qg.Groups
	return cfg
}

// Export dumps all quality gates in import/export form, keyed by name
func Export(ctx context.Context, client *sonar.Client) (map[string]GateConfig, error) {
	gates, err := List(ctx, client)
	if err != nil {
		return nil, err
	}
	configs := make(map[string]GateConfig, len(gates))
	for _, qg := range gates {
		configs[qg.Name] = qg.ToConfig()
	}
	return configs, nil
}

// CreateOrUpdate applies one gate configuration, creating the gate when it
// does not exist. Built-in gates are never touched.
func CreateOrUpdate(ctx context.Context, client *sonar.Client, name string, cfg GateConfig) error {
	if cfg.IsBuiltIn {
		return nil
	}
	qg, err := Get(ctx, client, name)
	if stderrors.Is(err, errors.ErrNotFound) {
		_, err = Create(ctx, client, name, cfg.Conditions, cfg.Users, cfg.Groups)
		return err
	}
	if err != nil {
		return err
	}
	if err := qg.SetConditions(ctx, client, cfg.Conditions); err != nil {
		return err
	}
	return qg.SetPermissions(ctx, client, cfg.Users, cfg.Groups)
}

// Import applies a full quality gate configuration dump
func Import(ctx context.Context, client *sonar.Client, configs map[string]GateConfig) error {
	for name, cfg := range configs {
		if err := CreateOrUpdate(ctx, client, name, cfg); err != nil {
			return fmt.Errorf("failed to import quality gate %q: %w", name, err)
		}
	}
	return nil
}

// Count returns the number of quality gates
func Count(ctx context.Context, client *sonar.Client) (int, error) {
	gates, err := List(ctx, client)
	if err != nil {
		return 0, err
	}
	return len(gates), nil
}
