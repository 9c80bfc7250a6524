// Package versions turns the raw version lists published in group indexes
// into the versions worth mirroring.
//
// A group index carries each artifact's versions as one comma-separated
// attribute ("1.0.0,1.1.0-alpha01,1.1.0"). [Filter] splits it and drops every
// entry that looks like a pre-release. The test is a case-insensitive
// substring match against a marker list, so "1.1.0-beta01", "2.0-RC1" and
// "3.0-dev" are all excluded. A release that merely contains a marker
// ("devops-1.0") is excluded too; that is deliberate and kept for
// compatibility with existing mirrors.
package versions

import "strings"

// DefaultMarkers are the pre-release markers excluded by default.
var DefaultMarkers = []string{"dev", "alpha", "beta", "rc"}

// Filter splits raw on commas and returns the versions whose lowercase form
// contains none of markers. Source order is preserved and duplicates are kept.
// Surrounding whitespace is trimmed and empty entries are dropped, so an empty
// raw string yields an empty (nil) slice.
func Filter(raw string, markers []string) []string {
	var out []string
	for _, v := range split(raw) {
		if !isPrerelease(v, markers) {
			out = append(out, v)
		}
	}
	return out
}

// Excluded returns how many entries of raw Filter would drop.
func Excluded(raw string, markers []string) int {
	n := 0
	for _, v := range split(raw) {
		if isPrerelease(v, markers) {
			n++
		}
	}
	return n
}

func split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isPrerelease(version string, markers []string) bool {
	lower := strings.ToLower(version)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
