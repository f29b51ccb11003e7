package customer

import "sort"

// Raw vocabularies accepted on input, as recorded in the customer base.
var (
	Jobs = set("admin.", "blue-collar", "entrepreneur", "housemaid", "management", "retired",
		"self-employed", "services", "student", "technician", "unemployed", "unknown")
	MaritalStatuses = set("divorced", "married", "single", "unknown")
	Educations      = set("basic.4y", "basic.6y", "basic.9y", "high.school", "illiterate",
		"professional.course", "university.degree", "unknown")
	YesNoUnknown = set("yes", "no", "unknown")
	Contacts     = set("cellular", "telephone")
	Months       = set("jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec")
	DaysOfWeek   = set("mon", "tue", "wed", "thu", "fri")
	POutcomes    = set("failure", "nonexistent", "success")
)

func set(vs ...string) map[string]bool {
	m := make(map[string]bool, len(vs))
	for _, v := range vs {
		m[v] = true
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
