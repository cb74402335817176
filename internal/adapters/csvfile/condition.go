package csvfile

import (
	"regexp"
	"strings"
)

var durationPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(h|hr|hrs|hour|hours|min|mins|minute|minutes)\b`)

// ParseInfusionDuration extracts the infusion duration in hours from a
// study condition such as "2h infusion" or "IV (30 min infusion)".
// Conditions that do not mention an infusion, or carry no duration,
// yield 0, which the model treats as a bolus.
func ParseInfusionDuration(condition string) float64 {
	text := strings.ToLower(condition)
	if !strings.Contains(text, "infusion") {
		return 0
	}
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := parseNumber(m[1])
	if err != nil {
		return 0
	}
	if strings.HasPrefix(m[2], "min") {
		return v / 60
	}
	return v
}
