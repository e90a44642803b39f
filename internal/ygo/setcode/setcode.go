// Package setcode parses and rewrites Yu-Gi-Oh! set codes across print
// regions.
//
// Two shapes are recognized. New-style codes carry a region marker between
// the hyphen and the collector number ("LOB-EN001"), old-style codes do not
// ("SDY-006") and are region-agnostic. Anything else (no hyphen, non-numeric
// suffix) is treated as opaque and passed through unchanged.
package setcode

import (
	"regexp"
	"strings"
)

var (
	// PREFIX-REGIONNUMBER, e.g. LOB-EN001, RA01-DE054, LOB-E001.
	newStyleRe = regexp.MustCompile(`^([A-Za-z0-9]+)-([A-Za-z]+)(\d+)$`)

	// PREFIX-NUMBER, e.g. SDY-006.
	oldStyleRe = regexp.MustCompile(`^([A-Za-z0-9]+)-(\d+)$`)
)

// regionLanguages maps region markers to canonical 2-letter language codes.
// Early prints used single-letter markers; a few modern markers (AE, TC, SC)
// are region variants of an existing language.
var regionLanguages = map[string]string{
	"E":  "EN",
	"G":  "DE",
	"F":  "FR",
	"I":  "IT",
	"S":  "ES",
	"P":  "PT",
	"J":  "JP",
	"K":  "KR",
	"AE": "EN",
	"TC": "ZH",
	"SC": "ZH",
	"EN": "EN",
	"DE": "DE",
	"FR": "FR",
	"IT": "IT",
	"ES": "ES",
	"PT": "PT",
	"JP": "JP",
	"KR": "KR",
}

// Transform rewrites the region marker of a new-style set code to the target
// language. Old-style codes have no region slot and are returned unchanged,
// as is anything that does not parse.
//
//	Transform("LOB-EN001", "de") == "LOB-DE001"
//	Transform("SDY-006", "de")   == "SDY-006"
func Transform(code, targetLang string) string {
	m := newStyleRe.FindStringSubmatch(code)
	if m == nil {
		return code
	}
	return m[1] + "-" + strings.ToUpper(targetLang) + m[3]
}

// Normalize strips the region marker from a new-style set code, yielding a
// region-agnostic PREFIX-NUMBER form usable for cross-locale equality.
// Old-style and unparseable codes are returned unchanged.
//
//	Normalize("LOB-EN001") == "LOB-001"
//	Normalize("SDY-006")   == "SDY-006"
func Normalize(code string) string {
	m := newStyleRe.FindStringSubmatch(code)
	if m == nil {
		return code
	}
	return m[1] + "-" + m[3]
}

// ExtractLanguage returns the canonical 2-letter language code for the region
// marker embedded in a new-style set code. Unknown regions, old-style codes
// and unparseable input all default to "EN".
func ExtractLanguage(code string) string {
	m := newStyleRe.FindStringSubmatch(code)
	if m == nil {
		return "EN"
	}
	if lang, ok := regionLanguages[strings.ToUpper(m[2])]; ok {
		return lang
	}
	return "EN"
}

// IsNewStyle reports whether the code carries a region marker.
func IsNewStyle(code string) bool {
	return newStyleRe.MatchString(code)
}
