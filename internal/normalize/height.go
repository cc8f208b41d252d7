package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	cmRe          = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*cm?$`)
	bareNumberRe  = regexp.MustCompile(`^(\d+(?:\.\d+)?)$`)
	decimalFeetRe = regexp.MustCompile(`^(\d+)\.(\d+)$`)
	quoteRe       = regexp.MustCompile(`^(\d+)\s*'\s*(\d+)?\s*(?:"|'')?$`)
	wordRe        = regexp.MustCompile(`(\d+)\s*(?:ft|feet)\s*(\d+)?\s*(?:in|inches|inch)?`)
	bareFeetRe    = regexp.MustCompile(`^(\d+)$`)
)

func feetInchesToCm(feet, inches int) int {
	totalInches := float64(feet*12 + inches)
	return int(math.Round(totalInches * 2.54))
}

// ParseHeightCm converts a free-text height into centimeters. Accepted forms:
// bare centimeters ("173", "173 cm"), quote notation ("5'8\""), word notation
// ("5 ft 8 in"), and a decimal read as feet.inches ("5.8" is 5 ft 8 in, not
// 5.8 of anything). A bare number is read as centimeters only above 50, so
// "5" means five feet while "170" means centimeters.
func ParseHeightCm(text string) (int, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return 0, false
	}

	if m := cmRe.FindStringSubmatch(trimmed); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(v)), true
	}

	if m := bareNumberRe.FindStringSubmatch(trimmed); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		if v > 50 {
			return int(math.Round(v)), true
		}
		// fall through: small numbers are feet-ish, handled below
	}

	// Checked before quote notation so "5.8" is never read as bare 5 feet.
	if m := decimalFeetRe.FindStringSubmatch(trimmed); m != nil {
		feet, _ := strconv.Atoi(m[1])
		inches, _ := strconv.Atoi(m[2])
		if inches <= 11 {
			return feetInchesToCm(feet, inches), true
		}
		return 0, false
	}

	if m := quoteRe.FindStringSubmatch(trimmed); m != nil {
		feet, _ := strconv.Atoi(m[1])
		inches := 0
		if m[2] != "" {
			inches, _ = strconv.Atoi(m[2])
		}
		return feetInchesToCm(feet, inches), true
	}

	if m := wordRe.FindStringSubmatch(trimmed); m != nil {
		feet, _ := strconv.Atoi(m[1])
		inches := 0
		if m[2] != "" {
			inches, _ = strconv.Atoi(m[2])
		}
		return feetInchesToCm(feet, inches), true
	}

	if m := bareFeetRe.FindStringSubmatch(trimmed); m != nil {
		feet, _ := strconv.Atoi(m[1])
		return feetInchesToCm(feet, 0), true
	}

	return 0, false
}

// FormatHeightCm renders centimeters back into quote notation for user-facing
// summaries, e.g. 173 -> 5'8".
func FormatHeightCm(cm int) string {
	totalInches := int(math.Round(float64(cm) / 2.54))
	feet := totalInches / 12
	inches := totalInches % 12
	return fmt.Sprintf(`%d'%d"`, feet, inches)
}
