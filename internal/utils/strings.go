package utils

import "strings"

// CSVToList splits a comma separated string into a list of trimmed,
// non-empty items
func CSVToList(csv string) []string {
	if csv == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(csv, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ListToCSV joins a list of strings into a comma separated string
func ListToCSV(items []string) string {
	return strings.Join(items, ",")
}

// Quote wraps a field in double quotes when it contains the separator,
// a quote or a line break, doubling any embedded quotes
func Quote(field, separator string) string {
	if !strings.ContainsAny(field, separator+"\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ContainsString checks if a string is present in a slice of strings
func ContainsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Diff returns the items of first that are not present in second,
// preserving order
func Diff(first, second []string) []string {
	exclude := make(map[string]struct{}, len(second))
	for _, s := range second {
		exclude[s] = struct{}{}
	}
	var out []string
	for _, s := range first {
		if _, found := exclude[s]; !found {
			out = append(out, s)
		}
	}
	return out
}
