package extract

import (
	"regexp"
	"strings"
)

// Title and author detection is layout heuristics, not parsing. Every helper
// here returns a zero value when no clean answer exists; nothing is ever
// fabricated.

const (
	// titleBandRatio restricts title search to the top portion of page 1.
	titleBandRatio = 0.35
	// minTitleFontSize rejects title candidates rendered too small to
	// plausibly be a paper title.
	minTitleFontSize = 6.0
	// authorLineWindow is how many lines below the title are considered
	// part of the author block.
	authorLineWindow = 3
)

var (
	authorSplitRe = regexp.MustCompile(`(?i),|;|&|\band\b`)
	markerTrimSet = "*†‡§¶#.,; \t"
	doiRe         = regexp.MustCompile(`\b10\.\d{4,9}/[-._;()/:A-Za-z0-9]+`)
	keywordsRe    = regexp.MustCompile(`(?is)keywords?\s*[:—-]\s*(.+?)(?:\n\s*\n|\n[A-Z0-9]|$)`)
)

// affiliationMarkers are substrings that mark a candidate as an affiliation
// or contact line rather than an author name.
var affiliationMarkers = []string{
	"@", "university", "institute", "department", "dept", "school",
	"laboratory", "college", "center", "centre", "inc.", "llc", "corp",
	"email", "orcid", ".com", ".edu", ".org",
}

// titleAndAuthors extracts a title guess and an author-list guess from the
// first page. The title is the largest-font line in the top band of the page;
// the author block is the lines immediately below it.
func titleAndAuthors(first pageData) (*string, []string) {
	lines := buildLines(first.glyphs)
	if len(lines) == 0 {
		return nil, nil
	}

	// Restrict to the top band; fall back to the first few lines when the
	// band is empty (e.g. unusual page dimensions).
	cutoff := first.height * (1 - titleBandRatio)
	var top []line
	for _, l := range lines {
		if l.y > cutoff {
			top = append(top, l)
		}
	}
	if len(top) == 0 {
		top = lines[:min(8, len(lines))]
	}

	titleIdx := 0
	for i, l := range top {
		if l.fontSize > top[titleIdx].fontSize {
			titleIdx = i
		}
	}
	if top[titleIdx].fontSize <= minTitleFontSize {
		return nil, nil
	}
	title := top[titleIdx].text

	authors := parseAuthorBlock(top[titleIdx+1 : min(titleIdx+1+authorLineWindow, len(top))])
	return &title, authors
}

// parseAuthorBlock splits author-block lines into candidate names,
// filtering out affiliation and contact material.
func parseAuthorBlock(blockLines []line) []string {
	var parts []string
	for _, l := range blockLines {
		// Drop whole affiliation/contact lines before joining so they cannot
		// glue onto a preceding name.
		if len(l.text) < 3 || looksLikeAffiliation(l.text) {
			continue
		}
		parts = append(parts, l.text)
	}
	if len(parts) == 0 {
		return nil
	}

	joined := strings.Join(parts, " ")
	var authors []string
	for _, candidate := range authorSplitRe.Split(joined, -1) {
		name := strings.Trim(candidate, markerTrimSet)
		if name == "" || looksLikeAffiliation(name) {
			continue
		}
		if !looksLikeName(name) {
			continue
		}
		authors = append(authors, name)
	}
	return authors
}

func looksLikeAffiliation(s string) bool {
	low := strings.ToLower(s)
	for _, marker := range affiliationMarkers {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}

// looksLikeName accepts 2-5 words where most words are capitalized.
func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 5 {
		return false
	}
	capitalized := 0
	for _, w := range words {
		r := rune(w[0])
		if r >= 'A' && r <= 'Z' {
			capitalized++
		}
	}
	return capitalized*10 >= len(words)*6 // at least 60%
}

// findDOI scans text for the first DOI-shaped token.
func findDOI(text string) *string {
	m := doiRe.FindString(text)
	if m == "" {
		return nil
	}
	m = strings.TrimRight(m, ".,;)")
	return &m
}

// findKeywords extracts a keyword list from a "Keywords:" block.
func findKeywords(text string) []string {
	m := keywordsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var keywords []string
	for _, k := range regexp.MustCompile(`[;,·]`).Split(m[1], -1) {
		k = strings.TrimSpace(strings.Trim(k, "."))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
