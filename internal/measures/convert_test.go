package measures

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRatingLetter(t *testing.T) {
	require.Equal(t, "A", RatingLetter("1.0"))
	require.Equal(t, "C", RatingLetter("3"))
	require.Equal(t, "E", RatingLetter("5.0"))
	require.Equal(t, "B", RatingLetter("B"))
	require.Equal(t, "6.0", RatingLetter("6.0"))
}

func TestRatingNumber(t *testing.T) {
	require.Equal(t, "1", RatingNumber("A"))
	require.Equal(t, "5", RatingNumber("E"))
	require.Equal(t, "1", RatingNumber("1.0"))
	require.Equal(t, "x", RatingNumber("x"))
}

func TestConvertRatings(t *testing.T) {
	opts := DefaultConvertOptions()
	require.Equal(t, "A", Convert("security_rating", "1.0", opts))

	opts.Ratings = RatingsNumbers
	require.Equal(t, "1", Convert("security_rating", "1.0", opts))
}

func TestConvertPercents(t *testing.T) {
	opts := DefaultConvertOptions()
	require.Equal(t, "0.450", Convert("coverage", "45.0", opts))
	require.Equal(t, "0.035", Convert("duplicated_lines_density", "3.5", opts))

	opts.Percents = PercentsString
	require.Equal(t, "45.0%", Convert("coverage", "45.0", opts))
	require.Equal(t, "3.5%", Convert("duplicated_lines_density", "3.5", opts))
}

func TestConvertDates(t *testing.T) {
	opts := DefaultConvertOptions()
	value := "2025-06-01T10:30:00+0200"
	require.Equal(t, value, Convert("last_analysis", value, opts))

	opts.Dates = DatesDateOnly
	require.Equal(t, "2025-06-01", Convert("last_analysis", value, opts))
}

func TestConvertPlainValue(t *testing.T) {
	opts := DefaultConvertOptions()
	require.Equal(t, "12345", Convert("ncloc", "12345", opts))
	require.Equal(t, "", Convert("ncloc", "", opts))
}
