// Package kb serves the static knowledge document the assistant answers
// club questions from. The document is plain text maintained by the club
// administrators; the bot injects it verbatim, no retrieval logic here.
package kb

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"
)

type Knowledge struct {
	path string

	mu   sync.RWMutex
	text string
}

func Load(path string) (*Knowledge, error) {
	k := &Knowledge{path: path}
	if err := k.Reload(); err != nil {
		return nil, err
	}
	return k, nil
}

// Reload re-reads the document from disk. Called on SIGHUP-style admin
// refresh; the running text is swapped atomically.
func (k *Knowledge) Reload() error {
	data, err := os.ReadFile(k.path)
	if err != nil {
		return fmt.Errorf("read knowledge document: %w", err)
	}
	k.mu.Lock()
	k.text = strings.TrimSpace(string(data))
	k.mu.Unlock()
	return nil
}

// Text returns the full document.
func (k *Knowledge) Text() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.text
}

// Sections splits the document on blank lines, one section per topic.
func (k *Knowledge) Sections() []string {
	k.mu.RLock()
	text := k.text
	k.mu.RUnlock()

	var sections []string
	for _, part := range strings.Split(text, "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			sections = append(sections, part)
		}
	}
	return sections
}

// Lookup returns sections matching any significant word of the query
// (case-folded substring match, words shorter than four runes are
// skipped). Empty result means the bot has no answer for the question.
func (k *Knowledge) Lookup(query string) []string {
	words := queryWords(query)
	if len(words) == 0 {
		return nil
	}
	var hits []string
	for _, section := range k.Sections() {
		folded := strings.ToLower(section)
		for _, w := range words {
			if strings.Contains(folded, w) {
				hits = append(hits, section)
				break
			}
		}
	}
	return hits
}

func queryWords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var words []string
	for _, f := range fields {
		if len([]rune(f)) >= 4 {
			words = append(words, f)
		}
	}
	return words
}
