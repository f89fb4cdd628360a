// Package utils provides shared utility functions.
//
// These utilities are used across multiple packages and include:
//   - CSV list parsing and joining
//   - SonarQube date/time parsing and formatting
//   - Field quoting for CSV export
package utils
