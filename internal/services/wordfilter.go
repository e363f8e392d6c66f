package services

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// WordFilter rejects text that should never be broadcast
type WordFilter interface {
	Matches(text string) bool
}

var defaultFilteredWords = []string{
	"fuck", "fucking", "shit", "bitch", "cunt", "dick", "cock", "pussy",
	"asshole", "bastard", "slut", "whore", "fag", "faggot", "nigger", "retard",
}

// RegexWordFilter matches whole words, case-insensitively
type RegexWordFilter struct {
	re *regexp.Regexp
}

// NewWordFilter builds a filter from a word list
func NewWordFilter(words []string) *RegexWordFilter {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
		}
	}
	if len(quoted) == 0 {
		return &RegexWordFilter{}
	}
	return &RegexWordFilter{re: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)}
}

// Matches reports whether text contains a filtered word
func (f *RegexWordFilter) Matches(text string) bool {
	return f.re != nil && f.re.MatchString(text)
}

type wordFilterFile struct {
	Words []string `yaml:"words"`
}

// LoadWordFilter reads a YAML word list ("words: [...]"); an empty path
// returns the built-in list
func LoadWordFilter(path string) (*RegexWordFilter, error) {
	if path == "" {
		return NewWordFilter(defaultFilteredWords), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word filter file: %w", err)
	}
	var file wordFilterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse word filter file %s: %w", path, err)
	}
	return NewWordFilter(append(file.Words, defaultFilteredWords...)), nil
}
