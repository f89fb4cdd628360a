package qualitygates

import (
	"fmt"
	"strings"

	"sonartools.dev/sonar-tools/internal/measures"
)

// EncodeCondition renders one condition in its human readable form
// "metric op value". GT means the measure must stay at or below the
// threshold, hence ">="; LT the reverse. Rating thresholds render as
// letters.
func EncodeCondition(c Condition) string {
	op := c.Op
	switch op {
	case "GT":
		op = ">="
	case "LT":
		op = "<="
	}
	value := c.Error
	if strings.HasSuffix(c.Metric, "rating") {
		value = measures.RatingLetter(value)
	}
	return fmt.Sprintf("%s %s %s", c.Metric, op, value)
}

// EncodeConditions renders a condition list in human readable form
func EncodeConditions(conditions []Condition) []string {
	encoded := make([]string, 0, len(conditions))
	for _, c := range conditions {
		encoded = append(encoded, EncodeCondition(c))
	}
	return encoded
}

// DecodeCondition parses the human readable condition form back into its
// API components
func DecodeCondition(encoded string) (metric, op, value string, err error) {
	parts := strings.Fields(strings.TrimSpace(encoded))
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("invalid quality gate condition %q", encoded)
	}
	metric, op, value = parts[0], parts[1], parts[2]
	switch op {
	case ">", ">=":
		op = "GT"
	case "<", "<=":
		op = "LT"
	default:
		return "", "", "", fmt.Errorf("invalid operator in quality gate condition %q", encoded)
	}
	if strings.HasSuffix(metric, "rating") {
		value = measures.RatingNumber(value)
	}
	return metric, op, value, nil
}
