package search

import "strings"

// Stop words to filter out when reporting matched query terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// matchedQueryTerms returns the query terms (after filtering) that appear in
// the chunk text, in query order without duplicates. Display metadata only;
// ranking is purely by vector similarity.
func matchedQueryTerms(chunkText, query string) []string {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return nil
	}

	chunkWords := tokenizeAndFilter(chunkText)
	chunkWordSet := make(map[string]bool, len(chunkWords))
	for _, word := range chunkWords {
		chunkWordSet[word] = true
	}

	var matched []string
	seen := make(map[string]bool, len(queryWords))
	for _, qWord := range queryWords {
		if chunkWordSet[qWord] && !seen[qWord] {
			matched = append(matched, qWord)
			seen[qWord] = true
		}
	}
	return matched
}
