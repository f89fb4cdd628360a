package audit

// RuleID identifies one audit rule
type RuleID string

// Audit rule identifiers
const (
	// Quality gates
	QGNoConditions      RuleID = "QG_NO_COND"
	QGTooManyConditions RuleID = "QG_TOO_MANY_COND"
	QGWrongMetric       RuleID = "QG_WRONG_METRIC"
	QGBadThreshold      RuleID = "QG_BAD_THRESHOLD"
	QGNotUsed           RuleID = "QG_NOT_USED"
	QGTooManyGates      RuleID = "QG_TOO_MANY_GATES"

	// Project permissions
	ProjPermMaxUsers            RuleID = "PROJ_PERM_MAX_USERS"
	ProjPermMaxAdminUsers       RuleID = "PROJ_PERM_MAX_ADM_USERS"
	ProjPermMaxGroups           RuleID = "PROJ_PERM_MAX_GROUPS"
	ProjPermMaxScanGroups       RuleID = "PROJ_PERM_MAX_SCAN_GROUPS"
	ProjPermMaxIssueAdmGroups   RuleID = "PROJ_PERM_MAX_ISSUE_ADM_GROUPS"
	ProjPermMaxHotspotAdmGroups RuleID = "PROJ_PERM_MAX_HOTSPOT_ADM_GROUPS"
	ProjPermMaxAdminGroups      RuleID = "PROJ_PERM_MAX_ADM_GROUPS"
	ProjPermAnyone              RuleID = "PROJ_PERM_ANYONE"
	ProjPermSonarUsersElevated  RuleID = "PROJ_PERM_SONAR_USERS_ELEVATED_PERMS"

	// Applications and portfolios
	AggregationEmpty     RuleID = "AGG_EMPTY"
	AggregationSingleton RuleID = "AGG_SINGLETON"
)

// Rule describes one audit rule
type Rule struct {
	Severity Severity
	Type     Type
	Message  string
}

var ruleRegistry = map[RuleID]Rule{
	QGNoConditions: {
		Severity: SeverityHigh, Type: TypeBadPractice,
		Message: "%s has no conditions, it passes unconditionally",
	},
	QGTooManyConditions: {
		Severity: SeverityMedium, Type: TypeBadPractice,
		Message: "%s has %d conditions, more than the %d recommended maximum",
	},
	QGWrongMetric: {
		Severity: SeverityHigh, Type: TypeBadPractice,
		Message: "%s has a condition on metric %q, conditions should measure new code only",
	},
	QGBadThreshold: {
		Severity: SeverityHigh, Type: TypeBadPractice,
		Message: "%s condition on metric %q: %s",
	},
	QGNotUsed: {
		Severity: SeverityMedium, Type: TypeOperations,
		Message: "%s is not used by any project and is not the default gate",
	},
	QGTooManyGates: {
		Severity: SeverityMedium, Type: TypeGovernance,
		Message: "Platform has %d quality gates, more than the %d recommended maximum",
	},
	ProjPermMaxUsers: {
		Severity: SeverityMedium, Type: TypeGovernance,
		Message: "%s has %d users with direct permissions, use groups instead",
	},
	ProjPermMaxAdminUsers: {
		Severity: SeverityHigh, Type: TypeGovernance,
		Message: "%s has %d users with admin permission, more than the %d recommended maximum",
	},
	ProjPermMaxGroups: {
		Severity: SeverityMedium, Type: TypeGovernance,
		Message: "%s has %d groups with permissions, more than the %d recommended maximum",
	},
	ProjPermMaxScanGroups: {
		Severity: SeverityHigh, Type: TypeGovernance,
		Message: "%s has %d groups with scan permission, more than the %d recommended maximum",
	},
	ProjPermMaxIssueAdmGroups: {
		Severity: SeverityMedium, Type: TypeGovernance,
		Message: "%s has %d groups with issue admin permission, more than the %d recommended maximum",
	},
	ProjPermMaxHotspotAdmGroups: {
		Severity: SeverityMedium, Type: TypeGovernance,
		Message: "%s has %d groups with hotspot admin permission, more than the %d recommended maximum",
	},
	ProjPermMaxAdminGroups: {
		Severity: SeverityHigh, Type: TypeGovernance,
		Message: "%s has %d groups with admin permission, more than the %d recommended maximum",
	},
	ProjPermAnyone: {
		Severity: SeverityCritical, Type: TypeSecurity,
		Message: "%s grants permissions to the Anyone group",
	},
	ProjPermSonarUsersElevated: {
		Severity: SeverityHigh, Type: TypeSecurity,
		Message: "%s grants elevated permissions to the sonar-users group",
	},
	AggregationEmpty: {
		Severity: SeverityLow, Type: TypeOperations,
		Message: "%s contains no projects",
	},
	AggregationSingleton: {
		Severity: SeverityLow, Type: TypeOperations,
		Message: "%s contains a single project, aggregations of one project are useless",
	},
}

// GetRule returns the rule definition for an id. Unknown ids map to a
// medium/bad-practice rule with a generic message.
func GetRule(id RuleID) Rule {
	if rule, ok := ruleRegistry[id]; ok {
		return rule
	}
	return Rule{Severity: SeverityMedium, Type: TypeBadPractice, Message: "%s"}
}
