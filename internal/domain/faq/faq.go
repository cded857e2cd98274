// Package faq answers feature and usage questions from a small full-text
// index of bilingual question/answer entries.
package faq

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Entry is one FAQ item. Questions carry both languages so one entry answers
// either phrasing; AnswerEN/AnswerBN are the reply templates per language.
type Entry struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Question string `json:"question"`
	AnswerEN string `json:"answer_en"`
	AnswerBN string `json:"answer_bn"`
}

// Result is a matched FAQ entry with its relevance score.
type Result struct {
	Entry Entry
	Score float64
}

// Index is an in-memory full-text FAQ index with typo tolerance.
type Index struct {
	index   bleve.Index
	indexMu sync.RWMutex
	entries map[string]Entry
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create faq index: %w", err)
	}
	return &Index{index: idx, entries: make(map[string]Entry)}, nil
}

// NewDefaultIndex creates an index seeded with the built-in entries.
func NewDefaultIndex() (*Index, error) {
	idx, err := NewIndex()
	if err != nil {
		return nil, err
	}
	if err := idx.Add(defaultEntries...); err != nil {
		return nil, err
	}
	return idx, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("topic", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("question", textFieldMapping)
	docMapping.AddFieldMappingsAt("answer_en", textFieldMapping)
	docMapping.AddFieldMappingsAt("answer_bn", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// Add indexes entries in one batch.
func (i *Index) Add(entries ...Entry) error {
	i.indexMu.Lock()
	defer i.indexMu.Unlock()

	batch := i.index.NewBatch()
	for _, e := range entries {
		if err := batch.Index(e.ID, e); err != nil {
			return fmt.Errorf("failed to index faq entry %s: %w", e.ID, err)
		}
		i.entries[e.ID] = e
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute faq batch: %w", err)
	}
	return nil
}

// Search returns the best-matching entries for a normalized question.
func (i *Index) Search(query string, limit int) ([]Result, error) {
	i.indexMu.RLock()
	defer i.indexMu.RUnlock()

	if limit <= 0 {
		limit = 3
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit

	searchResults, err := i.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("faq search failed: %w", err)
	}

	results := make([]Result, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		entry, ok := i.entries[hit.ID]
		if !ok {
			continue
		}
		results = append(results, Result{Entry: entry, Score: hit.Score})
	}
	return results, nil
}

// Answer returns the best answer text in the requested language, or false
// when nothing matched.
func (i *Index) Answer(query string, bengali bool) (string, bool) {
	results, err := i.Search(query, 1)
	if err != nil || len(results) == 0 {
		return "", false
	}
	if bengali {
		return results[0].Entry.AnswerBN, true
	}
	return results[0].Entry.AnswerEN, true
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}

var defaultEntries = []Entry{
	{
		ID:       "features",
		Topic:    "features",
		Question: "what can you do features তুমি কী করতে পারো ফিচার",
		AnswerEN: "I track your expenses from chat. Tell me what you spent, ask for a summary, or ask how much you spent on a category.",
		AnswerBN: "আমি চ্যাট থেকে আপনার খরচ ট্র্যাক করি। কী খরচ করেছেন বলুন, সারাংশ চান, বা কোন খাতে কত খরচ হয়েছে জিজ্ঞেস করুন।",
	},
	{
		ID:       "how-to-log",
		Topic:    "logging",
		Question: "how do i log an expense add expense কিভাবে খরচ লিখব",
		AnswerEN: "Just type it naturally, like \"coffee 100\" or \"চা ৫০ টাকা খরচ করেছি\". I parse the amount and category automatically.",
		AnswerBN: "স্বাভাবিকভাবে লিখলেই হবে, যেমন \"চা ৫০ টাকা খরচ করেছি\"। আমি টাকার অংক আর খাত নিজেই বুঝে নিই।",
	},
	{
		ID:       "how-to-correct",
		Topic:    "correction",
		Question: "how do i fix a mistake correct wrong amount ভুল ঠিক করব কিভাবে",
		AnswerEN: "Send a correction within 10 minutes, like \"sorry, I meant 500\". I replace the last matching expense and fix your totals.",
		AnswerBN: "১০ মিনিটের মধ্যে সংশোধন পাঠান, যেমন \"আসলে ৫০০ টাকা\"। আমি শেষ খরচটি বদলে মোট হিসাব ঠিক করে দিই।",
	},
	{
		ID:       "pricing",
		Topic:    "pricing",
		Question: "pricing cost subscription price কত টাকা লাগে",
		AnswerEN: "The assistant is free to use while in beta.",
		AnswerBN: "বেটা চলাকালীন অ্যাসিস্ট্যান্ট সম্পূর্ণ ফ্রি।",
	},
	{
		ID:       "summary",
		Topic:    "analysis",
		Question: "how does the summary report work সারাংশ রিপোর্ট কিভাবে কাজ করে",
		AnswerEN: "Ask for \"analysis\" or a period like \"this month\" and I total your active expenses by category.",
		AnswerBN: "\"বিশ্লেষণ দাও\" বা \"এই মাস\" লিখলে আমি খাতভিত্তিক মোট খরচ দেখাই।",
	},
}
