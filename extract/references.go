package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/papervault/papervault/core"
)

// Reference parsing is best-effort: the bibliography section is located by
// heading, split into entries by leading markers, and each entry gets a
// year scan and an author-substring guess. Fields stay nil when no clean
// answer exists.

var (
	refHeadingRe = regexp.MustCompile(`(?im)^\s*(?:[\divxlc]+[.\s]+)?(references|bibliography|works\s+cited)\s*$`)
	refEndRe     = regexp.MustCompile(`(?im)^\s*(appendix|acknowledg(e)?ments?)\b`)

	bracketMarkerRe = regexp.MustCompile(`(?m)^\s*\[(\d+)\]\s*`)
	numberMarkerRe  = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+`)

	yearRe = regexp.MustCompile(`\((19\d{2}|20\d{2})\)|\b(19\d{2}|20\d{2})\b`)
)

// parseReferences extracts bibliography entries from the full document text.
// Returns nil when no references section is found.
func parseReferences(fullText string) []core.Reference {
	section := referencesSection(fullText)
	if section == "" {
		return nil
	}

	entries := splitEntries(section)
	refs := make([]core.Reference, 0, len(entries))
	for i, text := range entries {
		text = strings.TrimSpace(strings.Join(strings.Fields(text), " "))
		if text == "" {
			continue
		}
		refs = append(refs, core.Reference{
			Index:   i + 1,
			Text:    text,
			Year:    referenceYear(text),
			Authors: referenceAuthors(text),
		})
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}

// referencesSection returns the text span between the references heading and
// the end of the document (or a trailing appendix/acknowledgments heading).
func referencesSection(fullText string) string {
	loc := refHeadingRe.FindStringIndex(fullText)
	if loc == nil {
		return ""
	}
	span := fullText[loc[1]:]
	if end := refEndRe.FindStringIndex(span); end != nil {
		span = span[:end[0]]
	}
	return strings.TrimSpace(span)
}

// splitEntries splits the references span into individual entries using
// leading [n] markers, then n. markers, then blank lines as a last resort.
func splitEntries(section string) []string {
	if entries := splitByMarker(section, bracketMarkerRe); len(entries) > 1 {
		return entries
	}
	if entries := splitByMarker(section, numberMarkerRe); len(entries) > 1 {
		return entries
	}

	var entries []string
	for _, block := range strings.Split(section, "\n\n") {
		if strings.TrimSpace(block) != "" {
			entries = append(entries, block)
		}
	}
	return entries
}

func splitByMarker(section string, marker *regexp.Regexp) []string {
	locs := marker.FindAllStringIndex(section, -1)
	if len(locs) == 0 {
		return nil
	}
	var entries []string
	for i, loc := range locs {
		end := len(section)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		entries = append(entries, section[loc[1]:end])
	}
	return entries
}

// referenceYear scans an entry for a plausible 4-digit publication year.
func referenceYear(text string) *int {
	m := yearRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &year
}

// referenceAuthors guesses the author substring: the text before the first
// year occurrence or before the first sentence period, whichever comes
// first. A guess longer than a plausible author list is discarded.
func referenceAuthors(text string) []string {
	cut := len(text)
	if loc := yearRe.FindStringIndex(text); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	if dot := strings.Index(text, ". "); dot > 0 && dot+1 < cut {
		// Initials ("J. Smith") end with a period too; require the segment
		// after the dot to start a new clause before treating it as the
		// author boundary.
		if dot >= 3 {
			cut = dot + 1
		}
	}

	head := strings.Trim(strings.TrimSpace(text[:cut]), ".,;")
	if head == "" || len(head) > 120 {
		return nil
	}
	return []string{head}
}
