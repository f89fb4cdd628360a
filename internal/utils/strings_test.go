package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCSVToList(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, CSVToList("a,b,c"))
	require.Equal(t, []string{"a", "b"}, CSVToList(" a , b "))
	require.Empty(t, CSVToList(""))
	require.Empty(t, CSVToList(" , , "))
}

func TestListToCSV(t *testing.T) {
	require.Equal(t, "a,b,c", ListToCSV([]string{"a", "b", "c"}))
	require.Equal(t, "", ListToCSV(nil))
}

func TestQuote(t *testing.T) {
	require.Equal(t, "plain", Quote("plain", ","))
	require.Equal(t, `"has,separator"`, Quote("has,separator", ","))
	require.Equal(t, `"has ""quotes"""`, Quote(`has "quotes"`, ","))
	require.Equal(t, "has,comma", Quote("has,comma", ";"))
}

func TestDiff(t *testing.T) {
	require.Equal(t, []string{"c"}, Diff([]string{"a", "b", "c"}, []string{"a", "b"}))
	require.Empty(t, Diff([]string{"a"}, []string{"a"}))
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2025-06-01T10:30:00+0200")
	require.NoError(t, err)
	require.Equal(t, 2025, parsed.Year())
	require.Equal(t, time.June, parsed.Month())

	parsed, err = ParseDate("2025-06-01")
	require.NoError(t, err)
	require.Equal(t, 1, parsed.Day())

	_, err = ParseDate("not a date")
	require.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	require.Equal(t, "2025-06-01T10:30:00+0000", FormatDate(date, true))
	require.Equal(t, "2025-06-01", FormatDate(date, false))
	require.Equal(t, "", FormatDate(time.Time{}, true))
}
