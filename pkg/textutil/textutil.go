// Package textutil holds the small cleanup and extraction helpers shared
// by the HTML scrapers.
package textutil

import (
	"regexp"
	"strings"
)

var (
	salaryDollarExpr = regexp.MustCompile(`\$[\d,]+\s*-\s*\$[\d,]+`)
	salaryKExpr      = regexp.MustCompile(`(?i)[\d,]+K\s*-\s*[\d,]+K`)
	salaryPKRExpr    = regexp.MustCompile(`(?i)PKR\s*[\d,]+\s*-\s*PKR\s*[\d,]+`)
	expPlusExpr      = regexp.MustCompile(`(?i)\d+\+?\s*(?:years|yrs)(?:\s*of)?\s*experience`)
	expRangeExpr     = regexp.MustCompile(`(?i)\d+\s*-\s*\d+\s*(?:years|yrs)(?:\s*of)?\s*experience`)
)

// Clean collapses whitespace runs and trims the result.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ExtractSalary pulls a salary range out of free text, empty when none
// of the known patterns match.
func ExtractSalary(text string) string {
	if text == "" {
		return ""
	}
	if m := salaryDollarExpr.FindString(text); m != "" {
		return m
	}
	if m := salaryKExpr.FindString(text); m != "" {
		return m
	}
	return salaryPKRExpr.FindString(text)
}

// ExtractExperience pulls an experience requirement out of free text.
func ExtractExperience(text string) string {
	if text == "" {
		return ""
	}
	if m := expRangeExpr.FindString(text); m != "" {
		return m
	}
	return expPlusExpr.FindString(text)
}

// ExtractJobNature classifies free text as remote, onsite or hybrid.
func ExtractJobNature(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "remote"):
		return "remote"
	case strings.Contains(lower, "onsite"),
		strings.Contains(lower, "on-site"),
		strings.Contains(lower, "on site"):
		return "onsite"
	case strings.Contains(lower, "hybrid"):
		return "hybrid"
	}
	return ""
}
