package interpreter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// stateNameVariants maps current state and city names to every spelling they
// appear under in historical datasets. Pre-2011 data for Odisha is filed
// under "ORISSA", and so on.
var stateNameVariants = map[string][]string{
	"odisha":       {"orissa", "odisha"},
	"mumbai":       {"bombay", "mumbai"},
	"chennai":      {"madras", "chennai"},
	"kolkata":      {"calcutta", "kolkata"},
	"bengaluru":    {"bangalore", "bengaluru"},
	"uttarakhand":  {"uttaranchal", "uttarakhand"},
	"chhattisgarh": {"chattisgarh", "chhattisgarh"},
	"telangana":    {"telengana", "telangana"},
}

// variantHints returns prompt lines for every renamed place the question
// mentions, under any of its spellings. Empty when the question names none.
func variantHints(question string) string {
	q := strings.ToLower(question)

	var b strings.Builder
	for _, current := range slices.Sorted(maps.Keys(stateNameVariants)) {
		variants := stateNameVariants[current]
		mentioned := strings.Contains(q, current)
		for _, v := range variants {
			if strings.Contains(q, v) {
				mentioned = true
			}
		}
		if !mentioned {
			continue
		}

		upper := make([]string, len(variants))
		for i, v := range variants {
			upper[i] = strings.ToUpper(v)
		}
		fmt.Fprintf(&b, "\n- %q may be stored as: %s", titleCase(current), strings.Join(upper, ", "))
	}
	return b.String()
}

// variantsFor returns the alternate spellings for a place name, or nil.
func variantsFor(name string) []string {
	return stateNameVariants[strings.ToLower(strings.TrimSpace(name))]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
