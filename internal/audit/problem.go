// Package audit provides the platform audit model: problems, rules,
// severities and the audit configuration.
package audit

import "fmt"

// Severity of an audit problem
type Severity string

// Problem severities
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Type of an audit problem
type Type string

// Problem types
const (
	TypeBadPractice Type = "BAD_PRACTICE"
	TypeSecurity    Type = "SECURITY"
	TypeGovernance  Type = "GOVERNANCE"
	TypeOperations  Type = "OPERATIONS"
	TypePerformance Type = "PERFORMANCE"
)

// Problem is one problem detected by an audit
type Problem struct {
	RuleID    RuleID   `json:"ruleId"`
	Severity  Severity `json:"severity"`
	Type      Type     `json:"type"`
	Message   string   `json:"message"`
	Component string   `json:"component,omitempty"`
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] [%s] %s", p.Severity, p.Type, p.Message)
}

// NewProblem creates a problem from a rule, filling severity and type from
// the rule registry and formatting its message template
func NewProblem(ruleID RuleID, component string, args ...interface{}) Problem {
	rule := GetRule(ruleID)
	return Problem{
		RuleID:    ruleID,
		Severity:  rule.Severity,
		Type:      rule.Type,
		Message:   fmt.Sprintf(rule.Message, args...),
		Component: component,
	}
}
