package text

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase unchanged", in: "apple", want: "apple"},
		{name: "uppercase folded", in: "APPLE", want: "apple"},
		{name: "mixed case folded", in: "Apple", want: "apple"},
		{name: "surrounding whitespace trimmed", in: "  apple  ", want: "apple"},
		{name: "inner whitespace collapsed", in: "Tim   Cook", want: "tim cook"},
		{name: "tabs and newlines collapsed", in: "tim\t\ncook", want: "tim cook"},
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.in); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	inputs := []string{"Apple", " APPLE ", "Tim  Cook", "md5", ""}
	for _, in := range inputs {
		once := Canonical(in)
		twice := Canonical(once)
		if once != twice {
			t.Errorf("Canonical not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCanonicalCaseInsensitive(t *testing.T) {
	if Canonical("Apple") != Canonical("APPLE") || Canonical("APPLE") != Canonical(" apple ") {
		t.Errorf("expected Apple, APPLE and ' apple ' to share one canonical form")
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		name    string
		folded  string
		word    string
		want    bool
	}{
		{name: "whole word match", folded: "md5 was released in 1991", word: "md5", want: true},
		{name: "substring is not a word", folded: "classic encryption", word: "lass", want: false},
		{name: "word at end", folded: "founded by ron rivest", word: "rivest", want: true},
		{name: "multi word phrase", folded: "spear phishing is targeted", word: "spear phishing", want: true},
		{name: "missing word", folded: "spear phishing is targeted", word: "whaling", want: false},
		{name: "empty word", folded: "anything", word: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsWord(tt.folded, tt.word); got != tt.want {
				t.Errorf("ContainsWord(%q, %q) = %v, want %v", tt.folded, tt.word, got, tt.want)
			}
		})
	}
}
