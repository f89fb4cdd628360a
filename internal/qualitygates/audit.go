package qualitygates

import (
	"context"
	"strconv"

	"sonartools.dev/sonar-tools/internal/audit"
	"sonartools.dev/sonar-tools/internal/sonar"
)

const newIssuesShouldBeZero = "any numeric threshold on new issues should be 0 or the condition should be removed"

// recommendedConditions maps the metrics that make sense as quality gate
// conditions to their recommended threshold range
var recommendedConditions = map[string]struct {
	min, max int
	message  string
}{
	"new_reliability_rating":         {1, 1, "any rating other than A would let bugs slip through in new code"},
	"new_security_rating":            {1, 1, "any rating other than A would let vulnerabilities slip through in new code"},
	"new_maintainability_rating":     {1, 1, "expectation is that code smell density on new code is low enough to get an A rating"},
	"new_coverage":                   {20, 90, "coverage below 20% is too low a bar, above 90% is overkill"},
	"new_bugs":                       {0, 0, newIssuesShouldBeZero},
	"new_vulnerabilities":            {0, 0, newIssuesShouldBeZero},
	"new_security_hotspots":          {0, 0, newIssuesShouldBeZero},
	"new_blocker_violations":         {0, 0, newIssuesShouldBeZero},
	"new_critical_violations":        {0, 0, newIssuesShouldBeZero},
	"new_major_violations":           {0, 0, newIssuesShouldBeZero},
	"new_duplicated_lines_density":   {1, 5, "duplication on new code below 1% is overkill, above 5% is too relaxed"},
	"new_security_hotspots_reviewed": {100, 100, "all hotspots on new code must be reviewed, any condition other than 100% makes little sense"},
	"reliability_rating":             {4, 4, "a threshold on overall code stricter than D will make the gate impossible to pass for legacy projects"},
	"security_rating":                {4, 4, "a threshold on overall code stricter than D will make the gate impossible to pass for legacy projects"},
}

// Audit checks one quality gate against the recommended configuration.
// Built-in gates are owned by the platform and are skipped.
func (qg *QualityGate) Audit(ctx context.Context, client *sonar.Client, settings audit.Settings) ([]audit.Problem, error) {
	if qg.IsBuiltIn {
		return nil, nil
	}
	var problems []audit.Problem
	maxConditions := settings.GetInt(audit.SettingQGMaxConditions, 8)
	switch n := len(qg.Conditions); {
	case n == 0:
		problems = append(problems, audit.NewProblem(audit.QGNoConditions, qg.Name, qg))
	case n > maxConditions:
		problems = append(problems, audit.NewProblem(audit.QGTooManyConditions, qg.Name, qg, n, maxConditions))
	}
	problems = append(problems, qg.auditConditions()...)

	if !qg.IsDefault {
		count, err := qg.ProjectCount(ctx, client)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			problems = append(problems, audit.NewProblem(audit.QGNotUsed, qg.Name, qg))
		}
	}
	return problems, nil
}

func (qg *QualityGate) auditConditions() []audit.Problem {
	var problems []audit.Problem
	for _, c := range qg.Conditions {
		recommended, ok := recommendedConditions[c.Metric]
		if !ok {
			problems = append(problems, audit.NewProblem(audit.QGWrongMetric, qg.Name, qg, c.Metric))
			continue
		}
		value, err := strconv.Atoi(c.Error)
		if err != nil {
			continue
		}
		if value < recommended.min || value > recommended.max {
			problems = append(problems, audit.NewProblem(audit.QGBadThreshold, qg.Name, qg, c.Metric, recommended.message))
		}
	}
	return problems
}

// AuditAll audits every quality gate of the platform plus the global
// gate count
func AuditAll(ctx context.Context, client *sonar.Client, settings audit.Settings) ([]audit.Problem, error) {
	gates, err := List(ctx, client)
	if err != nil {
		return nil, err
	}
	var problems []audit.Problem
	maxGates := settings.GetInt(audit.SettingQGMaxGates, 5)
	if len(gates) > maxGates {
		problems = append(problems, audit.NewProblem(audit.QGTooManyGates, "", len(gates), maxGates))
	}
	for _, qg := range gates {
		gateProblems, err := qg.Audit(ctx, client, settings)
		if err != nil {
			return nil, err
		}
		problems = append(problems, gateProblems...)
	}
	return problems, nil
}
