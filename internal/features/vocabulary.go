package features

import "strings"

// Canonical vocabularies and the fallback each raw value collapses to when it
// is not recognised.
var (
	validJobs = map[string]bool{
		"blue_collar": true, "housemaid": true, "services": true, "admin": true,
		"technician": true, "management": true, "self_employed": true,
		"entrepreneur": true, "unemployed": true, "student": true,
	}
	validContacts  = map[string]bool{"cellular": true, "telephone": true}
	validMonths    = map[string]bool{"jan": true, "feb": true, "mar": true, "apr": true, "may": true, "jun": true, "jul": true, "aug": true, "sep": true, "oct": true, "nov": true, "dec": true}
	validDays      = map[string]bool{"mon": true, "tue": true, "wed": true, "thu": true, "fri": true}
	validPOutcomes = map[string]bool{"failure": true, "nonexistent": true, "success": true}
)

const (
	FallbackJob      = "unemployed"
	FallbackMarital  = "single"
	FallbackContact  = "cellular"
	FallbackMonth    = "may"
	FallbackDay      = "mon"
	FallbackPOutcome = "nonexistent"
)

// Age categories.
const (
	AgeStruggling    = "struggling"
	AgeStable        = "stable"
	AgeAboutToRetire = "about to retire"
	AgeOld           = "old age"
)

// NormalizeJob collapses raw job labels ("admin.", "blue-collar") to the
// oracle vocabulary. Retired and unknown collapse to unemployed.
func NormalizeJob(job string) string {
	clean := strings.ToLower(strings.TrimSpace(job))
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, "-", "_")
	if validJobs[clean] {
		return clean
	}
	return FallbackJob
}

// NormalizeMarital keeps married; everything else (divorced, unknown) is single.
func NormalizeMarital(m string) string {
	if strings.ToLower(strings.TrimSpace(m)) == "married" {
		return "married"
	}
	return FallbackMarital
}

// MapEducation turns the dotted education label into the structured form.
func MapEducation(edu string) Education {
	switch strings.ToLower(strings.TrimSpace(edu)) {
	case "basic.4y":
		return Education{Type: EduSchool, Level: "primary", Grade: 4}
	case "basic.6y":
		return Education{Type: EduSchool, Level: "primary", Grade: 6}
	case "basic.9y":
		return Education{Type: EduSchool, Level: "middle", Grade: 9}
	case "high.school":
		return Education{Type: EduSchool, Level: "high", Grade: 12}
	case "illiterate":
		return Education{Type: EduIlliterate}
	}
	// professional.course, university.degree and unknown
	return Education{Type: EduUniversity}
}

// YesNo is true only for "yes"; "no", "unknown" and anything else are false.
func YesNo(v string) bool {
	return strings.ToLower(strings.TrimSpace(v)) == "yes"
}

// AgeCategory buckets age into the oracle's life-stage bands.
func AgeCategory(age int) string {
	switch {
	case age < 30:
		return AgeStruggling
	case age <= 50:
		return AgeStable
	case age <= 65:
		return AgeAboutToRetire
	}
	return AgeOld
}

func oneOf(v string, valid map[string]bool, fallback string) string {
	clean := strings.ToLower(strings.TrimSpace(v))
	if valid[clean] {
		return clean
	}
	return fallback
}
