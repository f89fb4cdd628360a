package permissions

import (
	"sonartools.dev/sonar-tools/internal/audit"
)

var elevatedPermissions = []string{"issueadmin", "scan", "securityhotspotadmin", "admin"}

// Audit checks the project permission set against the configured
// governance thresholds
func (pp *ProjectPermissionSet) Audit(settings audit.Settings) []audit.Problem {
	if !settings.GetBool(audit.SettingProjectPermissions, true) {
		return nil
	}
	return append(pp.auditUsers(settings), pp.auditGroups(settings)...)
}

func (pp *ProjectPermissionSet) auditUsers(settings audit.Settings) []audit.Problem {
	var problems []audit.Problem

	maxUsers := settings.GetInt(audit.SettingPermMaxUsers, 5)
	if count := pp.Count(TypeUsers); count > maxUsers {
		problems = append(problems, audit.NewProblem(audit.ProjPermMaxUsers, pp.ProjectKey, pp, count))
	}

	maxAdmins := settings.GetInt(audit.SettingPermMaxAdminUsers, 2)
	if count := pp.Count(TypeUsers, "admin"); count > maxAdmins {
		problems = append(problems, audit.NewProblem(audit.ProjPermMaxAdminUsers, pp.ProjectKey, pp, count, maxAdmins))
	}

	return problems
}

func (pp *ProjectPermissionSet) auditGroups(settings audit.Settings) []audit.Problem {
	var problems []audit.Problem

	for _, group := range pp.SortedHolders(TypeGroups) {
		perms := pp.Groups[group]
		if group == "Anyone" {
			problems = append(problems, audit.NewProblem(audit.ProjPermAnyone, pp.ProjectKey, pp))
		}
		if group == "sonar-users" {
			for _, elevated := range elevatedPermissions {
				if containsString(perms, elevated) {
					problems = append(problems, audit.NewProblem(audit.ProjPermSonarUsersElevated, pp.ProjectKey, pp))
					break
				}
			}
		}
	}

	type groupCheck struct {
		setting string
		def     int
		rule    audit.RuleID
		filter  []string
	}
	allPerms := make([]string, 0, len(ProjectPermissions))
	for perm := range ProjectPermissions {
		allPerms = append(allPerms, perm)
	}
	checks := []groupCheck{
		{audit.SettingPermMaxGroups, 5, audit.ProjPermMaxGroups, allPerms},
		{audit.SettingPermMaxScanGroups, 1, audit.ProjPermMaxScanGroups, []string{"scan"}},
		{audit.SettingPermMaxIssueAdmGroups, 1, audit.ProjPermMaxIssueAdmGroups, []string{"issueadmin"}},
		{audit.SettingPermMaxHotspotAdmGroups, 1, audit.ProjPermMaxHotspotAdmGroups, []string{"securityhotspotadmin"}},
		{audit.SettingPermMaxAdminGroups, 2, audit.ProjPermMaxAdminGroups, []string{"admin"}},
	}
	for _, check := range checks {
		maxAllowed := settings.GetInt(check.setting, check.def)
		if count := pp.Count(TypeGroups, check.filter...); count > maxAllowed {
			problems = append(problems, audit.NewProblem(check.rule, pp.ProjectKey, pp, count, maxAllowed))
		}
	}
	return problems
}
