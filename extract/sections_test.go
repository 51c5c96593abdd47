package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papervault/papervault/core"
)

func TestSplitSections(t *testing.T) {
	fullText := "Paper Title Line\n" +
		"Abstract\n" +
		"We study retrieval.\n" +
		"1. Introduction\n" +
		"Search is hard.\n" +
		"IV. RESULTS\n" +
		"It works.\n" +
		"References\n" +
		"[1] Someone. 2020."

	sections := splitSections(fullText)
	require.NotNil(t, sections)

	assert.Equal(t, "Paper Title Line", sections[core.SectionUnclassified])
	assert.Equal(t, "We study retrieval.", sections[core.SectionAbstract])
	assert.Equal(t, "Search is hard.", sections[core.SectionIntroduction])
	assert.Equal(t, "It works.", sections[core.SectionResults])
	assert.Equal(t, "[1] Someone. 2020.", sections[core.SectionReferences])
}

func TestSplitSectionsNoHeadings(t *testing.T) {
	assert.Nil(t, splitSections("just one long paragraph without any headings at all"))
}

func TestSplitSectionsAbstractFallback(t *testing.T) {
	fullText := "Abstract: We study inline abstracts.\n\n" +
		"1. Introduction\n" +
		"Body text."

	sections := splitSections(fullText)
	require.NotNil(t, sections)
	assert.Equal(t, "We study inline abstracts.", sections[core.SectionAbstract])
	assert.Equal(t, "Body text.", sections[core.SectionIntroduction])
}

func TestSplitSectionsIgnoresLongLines(t *testing.T) {
	// A sentence that merely starts with a section word is not a heading.
	fullText := "Introduction to the topic of dense retrieval and its many applications in modern systems\n" +
		"Conclusion\n" +
		"Done."

	sections := splitSections(fullText)
	require.NotNil(t, sections)
	assert.Equal(t, "Done.", sections[core.SectionConclusion])
	assert.Contains(t, sections[core.SectionUnclassified], "Introduction to the topic")
}
