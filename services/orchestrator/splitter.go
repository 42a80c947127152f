package orchestrator

import (
	"regexp"
	"strings"
)

var enumeratedItem = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|[-*])\s+`)

// Splitter decomposes a message into independent sub-questions. It is a
// heuristic: enumerated lists and multiple question marks indicate separate
// questions; everything else is treated as a single one.
type Splitter struct{}

func NewSplitter() *Splitter {
	return &Splitter{}
}

func (s *Splitter) Split(question string) []string {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}

	if parts := s.splitEnumerated(question); len(parts) > 1 {
		return parts
	}
	if parts := s.splitOnQuestionMarks(question); len(parts) > 1 {
		return parts
	}
	return []string{question}
}

func (s *Splitter) splitEnumerated(question string) []string {
	matches := enumeratedItem.FindAllStringIndex(question, -1)
	if len(matches) < 2 {
		return nil
	}

	parts := make([]string, 0, len(matches))
	for i, m := range matches {
		end := len(question)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		item := strings.TrimSpace(question[m[1]:end])
		if item != "" {
			parts = append(parts, item)
		}
	}
	return parts
}

func (s *Splitter) splitOnQuestionMarks(question string) []string {
	segments := strings.Split(question, "?")
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		// Short fragments ("Why", trailing politeness) are not
		// independent questions.
		if len(strings.Fields(seg)) < 3 {
			continue
		}
		parts = append(parts, seg+"?")
	}
	return parts
}
