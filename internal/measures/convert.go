package measures

import (
	"fmt"
	"strconv"
	"strings"

	"sonartools.dev/sonar-tools/internal/utils"
)

// Conversion modes for exported measure values
const (
	RatingsLetters = "letters"
	RatingsNumbers = "numbers"
	PercentsFloat  = "float"
	PercentsString = "percents"
	DatesDatetime  = "datetime"
	DatesDateOnly  = "dateonly"
)

// ConvertOptions controls how ratings, percentages and dates are rendered
type ConvertOptions struct {
	Ratings  string
	Percents string
	Dates    string
}

// DefaultConvertOptions renders ratings as letters, percentages as floats
// and dates with time
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		Ratings:  RatingsLetters,
		Percents: PercentsFloat,
		Dates:    DatesDatetime,
	}
}

// RatingLetter converts a numeric rating (1..5, possibly "1.0") to its
// letter form (A..E). Values already in letter form pass through.
func RatingLetter(value string) string {
	if value >= "A" && value <= "E" && len(value) == 1 {
		return value
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 1 || f > 5 {
		return value
	}
	return string(rune('A' + int(f) - 1))
}

// RatingNumber converts a letter rating (A..E) to its numeric form (1..5).
// Values already numeric pass through.
func RatingNumber(value string) string {
	if len(value) == 1 && value[0] >= 'A' && value[0] <= 'E' {
		return strconv.Itoa(int(value[0]-'A') + 1)
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return strconv.Itoa(int(f))
	}
	return value
}

// Convert renders one measure value per the conversion options. The metric
// key decides which conversion applies: *_rating metrics are ratings,
// *density/coverage* metrics are percentages, date-valued fields are dates.
func Convert(metric, value string, opts ConvertOptions) string {
	switch {
	case strings.HasSuffix(metric, "_rating"):
		if opts.Ratings == RatingsNumbers {
			return RatingNumber(value)
		}
		return RatingLetter(value)
	case isPercentMetric(metric):
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		if opts.Percents == PercentsString {
			return fmt.Sprintf("%.1f%%", f)
		}
		return strconv.FormatFloat(f/100.0, 'f', 3, 64)
	case isDateValue(value):
		t, err := utils.ParseDate(value)
		if err != nil {
			return value
		}
		return utils.FormatDate(t, opts.Dates != DatesDateOnly)
	default:
		return value
	}
}

func isPercentMetric(metric string) bool {
	return strings.HasSuffix(metric, "density") ||
		strings.Contains(metric, "coverage") ||
		strings.HasSuffix(metric, "_reviewed")
}

func isDateValue(value string) bool {
	_, err := utils.ParseDate(value)
	return err == nil && strings.Contains(value, "-") && len(value) >= len("2006-01-02")
}
