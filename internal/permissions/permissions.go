// Package permissions provides read, apply and audit of SonarQube project
// permissions for users and groups.
package permissions

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"sonartools.dev/sonar-tools/internal/sonar"
)

// Project permission keys and their display names
var ProjectPermissions = map[string]string{
	"user":                 "Browse",
	"codeviewer":           "See source code",
	"issueadmin":           "Administer Issues",
	"securityhotspotadmin": "Administer Security Hotspots",
	"scan":                 "Execute Analysis",
	"admin":                "Administer Project",
}

// Permission holder types
const (
	TypeUsers  = "users"
	TypeGroups = "groups"
)

// ProjectPermissionSet holds the permissions of one project: for each
// holder type, holder name to granted permission keys
type ProjectPermissionSet struct {
	ProjectKey string
	Users      map[string][]string
	Groups     map[string][]string
}

func (pp *ProjectPermissionSet) String() string {
	return fmt.Sprintf("permissions of project '%s'", pp.ProjectKey)
}

// holders returns the permission map for a holder type
func (pp *ProjectPermissionSet) holders(permType string) map[string][]string {
	if permType == TypeUsers {
		return pp.Users
	}
	return pp.Groups
}

// Count returns how many holders of a type have at least one of the given
// permissions. An empty filter counts holders with any permission.
func (pp *ProjectPermissionSet) Count(permType string, permFilter ...string) int {
	count := 0
	for _, perms := range pp.holders(permType) {
		if len(permFilter) == 0 {
			if len(perms) > 0 {
				count++
			}
			continue
		}
		for _, wanted := range permFilter {
			if containsString(perms, wanted) {
				count++
				break
			}
		}
	}
	return count
}

// Read retrieves the full permission set of a project
func Read(ctx context.Context, client *sonar.Client, projectKey string) (*ProjectPermissionSet, error) {
	pp := &ProjectPermissionSet{
		ProjectKey: projectKey,
		Users:      map[string][]string{},
		Groups:     map[string][]string{},
	}
	if err := pp.read(ctx, client, TypeUsers); err != nil {
		return nil, err
	}
	if err := pp.read(ctx, client, TypeGroups); err != nil {
		return nil, err
	}
	return pp, nil
}

func (pp *ProjectPermissionSet) read(ctx context.Context, client *sonar.Client, permType string) error {
	endpoint := "permissions/users"
	nameField := "login"
	if permType == TypeGroups {
		endpoint = "permissions/groups"
		nameField = "name"
	}
	page := 1
	for {
		params := url.Values{}
		params.Set("projectKey", pp.ProjectKey)
		params.Set("ps", "100")
		params.Set("p", strconv.Itoa(page))
		var payload struct {
			Paging sonar.Paging             `json:"paging"`
			Users  []map[string]interface{} `json:"users"`
			Groups []map[string]interface{} `json:"groups"`
		}
		if err := client.Get(ctx, endpoint, params, &payload); err != nil {
			return err
		}
		entries := payload.Users
		if permType == TypeGroups {
			entries = payload.Groups
		}
		for _, entry := range entries {
			name, _ := entry[nameField].(string)
			if name == "" {
				continue
			}
			var perms []string
			if rawPerms, ok := entry["permissions"].([]interface{}); ok {
				for _, p := range rawPerms {
					if s, ok := p.(string); ok {
						perms = append(perms, s)
					}
				}
			}
			if len(perms) > 0 {
				pp.holders(permType)[name] = perms
			}
		}
		total := payload.Paging.Total
		if total == 0 || page*100 >= total {
			break
		}
		page++
	}
	return nil
}

// Apply reconciles the project permissions with the wanted state:
// permissions present remotely but not wanted are removed, missing ones
// are added
func (pp *ProjectPermissionSet) Apply(ctx context.Context, client *sonar.Client, wanted *ProjectPermissionSet) error {
	for _, permType := range []string{TypeUsers, TypeGroups} {
		current := pp.holders(permType)
		target := wanted.holders(permType)
		for holder, perms := range current {
			for _, perm := range perms {
				if !containsString(target[holder], perm) {
					if err := pp.post(ctx, client, permType, "remove", holder, perm); err != nil {
						return err
					}
				}
			}
		}
		for holder, perms := range target {
			for _, perm := range perms {
				if !containsString(current[holder], perm) {
					if err := pp.post(ctx, client, permType, "add", holder, perm); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (pp *ProjectPermissionSet) post(ctx context.Context, client *sonar.Client, permType, action, holder, permission string) error {
	params := url.Values{}
	params.Set("projectKey", pp.ProjectKey)
	params.Set("permission", permission)
	var endpoint string
	if permType == TypeUsers {
		endpoint = fmt.Sprintf("permissions/%s_user", action)
		params.Set("login", holder)
	} else {
		endpoint = fmt.Sprintf("permissions/%s_group", action)
		params.Set("groupName", holder)
	}
	return client.Post(ctx, endpoint, params)
}

// SortedHolders returns holder names of a type in stable order
func (pp *ProjectPermissionSet) SortedHolders(permType string) []string {
	holders := pp.holders(permType)
	names := make([]string, 0, len(holders))
	for name := range holders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
