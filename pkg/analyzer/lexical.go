package analyzer

import (
	"context"
	"sync"

	"github.com/ccollicutt/chatlens/pkg/parser"
	"github.com/ccollicutt/chatlens/pkg/textstat"
)

// LexicalEngine counts stemmed words, mentions and hashtags.
type LexicalEngine struct {
	topN int

	mu       sync.Mutex
	words    map[string]int
	mentions map[string]int
	hashtags map[string]int
}

// NewLexicalEngine creates a lexical engine keeping the topN most frequent
// entries of each list.
func NewLexicalEngine(topN int) *LexicalEngine {
	e := &LexicalEngine{topN: topN}
	e.Reset()
	return e
}

// Name returns the engine name.
func (e *LexicalEngine) Name() string {
	return "lexical"
}

// Process handles a single message.
func (e *LexicalEngine) Process(_ context.Context, msg *parser.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, w := range textstat.Tokenize(msg.Body) {
		e.words[w]++
	}
	for _, m := range textstat.Mentions(msg.Body) {
		e.mentions[m]++
	}
	for _, h := range textstat.Hashtags(msg.Body) {
		e.hashtags[h]++
	}
	return nil
}

// Finalize writes the lexical section.
func (e *LexicalEngine) Finalize(_ context.Context, stats *Stats) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats.Lexical = &LexicalStats{
		TopWords:    rank(e.words, e.topN),
		TopMentions: rank(e.mentions, e.topN),
		TopHashtags: rank(e.hashtags, e.topN),
		UniqueWords: len(e.words),
	}
	return nil
}

// Reset clears internal state for reuse.
func (e *LexicalEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.words = make(map[string]int)
	e.mentions = make(map[string]int)
	e.hashtags = make(map[string]int)
}
