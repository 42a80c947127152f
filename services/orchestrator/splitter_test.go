package orchestrator

import (
	"testing"
)

func TestSplitter(t *testing.T) {
	s := NewSplitter()

	tests := []struct {
		name     string
		question string
		expected int
	}{
		{
			name:     "Single question",
			question: "What is the European Accessibility Act?",
			expected: 1,
		},
		{
			name:     "Single question without question mark",
			question: "Tell me about EAA deadlines",
			expected: 1,
		},
		{
			name:     "Two independent questions",
			question: "What products does the EAA cover? When does enforcement start and who is exempt?",
			expected: 2,
		},
		{
			name:     "Enumerated list",
			question: "I have questions:\n1. Does the EAA apply to e-books?\n2. What about ATMs?\n3. Are microenterprises exempt?",
			expected: 3,
		},
		{
			name:     "Trailing short fragment ignored",
			question: "What are the penalties for non-compliance in Germany? Thanks?",
			expected: 1,
		},
		{
			name:     "Whitespace only",
			question: "   ",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := s.Split(tt.question)
			if len(parts) != tt.expected {
				t.Fatalf("expected %d parts, got %d: %#v", tt.expected, len(parts), parts)
			}
			for _, p := range parts {
				if p == "" {
					t.Errorf("empty sub-question in %#v", parts)
				}
			}
		})
	}
}
