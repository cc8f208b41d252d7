package normalize

import "strings"

// Level is the 8-point ordinal education scale used for "at least X"
// comparisons in match filtering.
type Level int

const (
	Below10th Level = iota + 1
	TenthPass
	TwelfthPass
	Diploma
	Undergraduate
	Graduate
	Postgraduate
	Doctorate
)

var levelNames = map[Level]string{
	Below10th:     "Below 10th",
	TenthPass:     "10th Pass",
	TwelfthPass:   "12th Pass",
	Diploma:       "Diploma",
	Undergraduate: "Undergraduate (Pursuing)",
	Graduate:      "Graduate",
	Postgraduate:  "Postgraduate",
	Doctorate:     "Doctorate",
}

func (l Level) Name() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "Unknown"
}

var educationKeywords = map[string]Level{
	"below 10":     Below10th,
	"under 10":     Below10th,
	"less than 10": Below10th,

	"10th":        TenthPass,
	"10 th":       TenthPass,
	"tenth":       TenthPass,
	"ssc":         TenthPass,
	"secondary":   TenthPass,
	"high school": TenthPass,

	"12th":             TwelfthPass,
	"12 th":            TwelfthPass,
	"twelfth":          TwelfthPass,
	"hsc":              TwelfthPass,
	"higher secondary": TwelfthPass,
	"intermediate":     TwelfthPass,
	"+2":               TwelfthPass,

	"diploma":     Diploma,
	"polytechnic": Diploma,
	"iti":         Diploma,

	"undergraduate":       Undergraduate,
	"pursuing graduation": Undergraduate,
	"pursuing bachelor":   Undergraduate,
	"currently pursuing":  Undergraduate,

	"graduate":   Graduate,
	"bachelor":   Graduate,
	"graduation": Graduate,
	"b.a":        Graduate,
	"ba":         Graduate,
	"b.sc":       Graduate,
	"bsc":        Graduate,
	"b.com":      Graduate,
	"bcom":       Graduate,
	"b.tech":     Graduate,
	"btech":      Graduate,
	"b.e":        Graduate,
	"be":         Graduate,
	"bba":        Graduate,
	"bca":        Graduate,
	"llb":        Graduate,
	"b.ed":       Graduate,
	"bed":        Graduate,
	"mbbs":       Graduate,
	"bds":        Graduate,
	"bhms":       Graduate,
	"bams":       Graduate,

	"postgraduate":  Postgraduate,
	"post graduate": Postgraduate,
	"master":        Postgraduate,
	"masters":       Postgraduate,
	"pg":            Postgraduate,
	"m.a":           Postgraduate,
	"ma":            Postgraduate,
	"m.sc":          Postgraduate,
	"msc":           Postgraduate,
	"m.com":         Postgraduate,
	"mcom":          Postgraduate,
	"m.tech":        Postgraduate,
	"mtech":         Postgraduate,
	"m.e":           Postgraduate,
	"me":            Postgraduate,
	"mba":           Postgraduate,
	"mca":           Postgraduate,
	"llm":           Postgraduate,
	"m.ed":          Postgraduate,
	"med":           Postgraduate,
	"md":            Postgraduate,
	"ms":            Postgraduate,

	"doctorate": Doctorate,
	"phd":       Doctorate,
	"ph.d":      Doctorate,
	"doctor":    Doctorate,
	"d.phil":    Doctorate,
	"dphil":     Doctorate,
}

func tokenMatch(normalized, keyword string) bool {
	return normalized == keyword ||
		strings.Contains(normalized, " "+keyword+" ") ||
		strings.HasPrefix(normalized, keyword+" ") ||
		strings.HasSuffix(normalized, " "+keyword)
}

// ParseEducationLevel maps a free-text qualification onto the ordinal scale.
// Whole-token matches are preferred over substring matches; in either pass,
// when several keywords are present the highest level wins ("B.Tech and MBA"
// is Postgraduate). Text with no education signal at all defaults to
// Graduate; empty text is Below10th.
func ParseEducationLevel(text string) Level {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Below10th
	}

	var best Level
	for keyword, level := range educationKeywords {
		if tokenMatch(normalized, keyword) && level > best {
			best = level
		}
	}
	if best > 0 {
		return best
	}

	for keyword, level := range educationKeywords {
		if strings.Contains(normalized, keyword) && level > best {
			best = level
		}
	}
	if best > 0 {
		return best
	}

	return Graduate
}
