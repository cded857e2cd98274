// Package categorization assigns spending categories to free-text expense
// descriptions using a multi-pattern Aho-Corasick matcher over bilingual
// keyword sets, with a fuzzy fallback for typos.
package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is one detected keyword with its category.
type Match struct {
	Category string
	Keyword  string
}

// Engine matches thousands of keywords in a single pass through the text.
// Time complexity is O(n + m) for text length n and m matches, independent
// of the number of keywords.
type Engine struct {
	matcher  *ahocorasick.Matcher
	keywords []string // same order as matcher patterns
	category []string // category for keywords[i]
	mu       sync.RWMutex
}

// NewEngine builds an engine from category → keyword sets. Keywords are
// matched as substrings of normalized text; the longest match wins.
func NewEngine(sets map[string][]string) *Engine {
	e := &Engine{}
	e.Build(sets)
	return e
}

// DefaultEngine returns an engine loaded with the built-in bilingual sets.
func DefaultEngine() *Engine {
	return NewEngine(defaultKeywords)
}

// Build reconstructs the matcher. Safe to call when keyword sets change.
func (e *Engine) Build(sets map[string][]string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.keywords = e.keywords[:0]
	e.category = e.category[:0]

	for cat, words := range sets {
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			e.keywords = append(e.keywords, w)
			e.category = append(e.category, cat)
		}
	}

	if len(e.keywords) == 0 {
		e.matcher = nil
		return
	}

	patterns := make([][]byte, len(e.keywords))
	for i, w := range e.keywords {
		patterns[i] = []byte(w)
	}
	e.matcher = ahocorasick.NewMatcher(patterns)
}

// Detect returns the best (longest) keyword match in the text.
func (e *Engine) Detect(normalized string) (category string, keyword string, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil {
		return "", "", false
	}

	hits := e.matcher.Match([]byte(normalized))
	if len(hits) == 0 {
		return "", "", false
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.keywords) {
			continue
		}
		if best == -1 || len(e.keywords[idx]) > len(e.keywords[best]) {
			best = idx
		}
	}
	if best == -1 {
		return "", "", false
	}
	return e.category[best], e.keywords[best], true
}

// DetectAll returns every matched keyword, deduplicated by category.
func (e *Engine) DetectAll(normalized string) []Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil {
		return nil
	}

	seen := make(map[string]bool)
	var matches []Match
	for _, idx := range e.matcher.Match([]byte(normalized)) {
		if idx < 0 || idx >= len(e.keywords) {
			continue
		}
		cat := e.category[idx]
		if seen[cat] {
			continue
		}
		seen[cat] = true
		matches = append(matches, Match{Category: cat, Keyword: e.keywords[idx]})
	}
	return matches
}

// maxFuzzyRank is the largest Levenshtein distance accepted by DetectFuzzy.
const maxFuzzyRank = 2

// DetectFuzzy catches near-miss spellings ("cofee", "grocerys") that the
// exact matcher skipped. Each whitespace token is ranked against every
// keyword; the lowest edit distance wins.
func (e *Engine) DetectFuzzy(normalized string) (category string, keyword string, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	bestRank := maxFuzzyRank + 1
	bestIdx := -1

	for _, token := range strings.Fields(normalized) {
		if len(token) < 4 {
			continue // short tokens fuzz into everything
		}
		for i, kw := range e.keywords {
			if len(kw) < 4 {
				continue
			}
			rank := fuzzy.RankMatchNormalizedFold(token, kw)
			if rank >= 0 && rank < bestRank {
				bestRank = rank
				bestIdx = i
			}
		}
	}

	if bestIdx == -1 {
		return "", "", false
	}
	return e.category[bestIdx], e.keywords[bestIdx], true
}

// Categorize resolves a category for an expense description, trying exact
// matching first and fuzzy second. Falls back to CategoryOther.
func (e *Engine) Categorize(normalized string) string {
	if cat, _, ok := e.Detect(normalized); ok {
		return cat
	}
	if cat, _, ok := e.DetectFuzzy(normalized); ok {
		return cat
	}
	return CategoryOther
}

// KeywordCount reports how many keywords are loaded.
func (e *Engine) KeywordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.keywords)
}
