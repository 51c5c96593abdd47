package extract

import (
	"regexp"
	"strings"

	"github.com/papervault/papervault/core"
)

// Section boundaries are found by heading-line matching. Text above the
// first recognized heading (and any text under an unrecognized heading)
// belongs to the "unclassified" bucket; nothing is dropped.

type sectionPattern struct {
	name string
	re   *regexp.Regexp
}

// Numbered-heading variants ("1. Introduction", "IV. RESULTS") are accepted
// alongside bare headings.
var sectionPatterns = []sectionPattern{
	{core.SectionAbstract, regexp.MustCompile(`(?i)^(?:[\divxlc]+[.\s]+)?(abstract|summary)\s*$`)},
	{core.SectionIntroduction, regexp.MustCompile(`(?i)^(?:[\divxlc]+[.\s]+)?(introduction|background)\s*$`)},
	{core.SectionMethodology, regexp.MustCompile(`(?i)^(?:[\divxlc]+[.\s]+)?(methodology|methods|materials\s+and\s+methods|approach)\s*$`)},
	{core.SectionResults, regexp.MustCompile(`(?i)^(?:[\divxlc]+[.\s]+)?(results|findings|experiments|evaluation)\s*$`)},
	{core.SectionConclusion, regexp.MustCompile(`(?i)^(?:[\divxlc]+[.\s]+)?(conclusion|conclusions|discussion)\s*$`)},
	{core.SectionReferences, regexp.MustCompile(`(?i)^(?:[\divxlc]+[.\s]+)?(references|bibliography|works\s+cited)\s*$`)},
}

var abstractFallbackRe = regexp.MustCompile(`(?is)abstract[:.\s]*(.+?)(?:\n\s*\n|$)`)

// splitSections maps recognized section names to their text spans.
// Returns nil when no headings were recognized at all, signalling the caller
// to fall back to whole-document chunking.
func splitSections(fullText string) map[string]string {
	lines := strings.Split(fullText, "\n")

	type boundary struct {
		name  string
		index int
	}
	var boundaries []boundary
	seen := make(map[string]bool)

	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || len(trimmed) > 60 {
			continue
		}
		for _, p := range sectionPatterns {
			if seen[p.name] {
				continue
			}
			if p.re.MatchString(trimmed) {
				boundaries = append(boundaries, boundary{p.name, i})
				seen[p.name] = true
				break
			}
		}
	}

	if len(boundaries) == 0 {
		return nil
	}

	sections := make(map[string]string)

	// Text before the first heading is unclassified, not dropped.
	if pre := strings.TrimSpace(strings.Join(lines[:boundaries[0].index], "\n")); pre != "" {
		sections[core.SectionUnclassified] = pre
	}

	for i, b := range boundaries {
		end := len(lines)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].index
		}
		text := strings.TrimSpace(strings.Join(lines[b.index+1:end], "\n"))
		if text != "" {
			sections[b.name] = text
		}
	}

	// Abstracts are often run into the opening paragraph rather than under
	// their own heading line.
	if _, ok := sections[core.SectionAbstract]; !ok {
		if abs := abstractFallback(fullText); abs != "" {
			sections[core.SectionAbstract] = abs
		}
	}

	return sections
}

// abstractFallback scans the opening of the document for an inline
// "Abstract ..." block.
func abstractFallback(fullText string) string {
	head := fullText
	if len(head) > 4000 {
		head = head[:4000]
	}
	m := abstractFallbackRe.FindStringSubmatch(head)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
