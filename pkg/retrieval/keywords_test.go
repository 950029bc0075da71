package retrieval

import (
	"reflect"
	"testing"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "definition question keeps interrogatives",
			query: "What is MD5?",
			want:  []string{"what", "is", "md5"},
		},
		{
			name:  "stop words dropped",
			query: "tell me about the encryption of the data",
			want:  []string{"encryption", "data"},
		},
		{
			name:  "punctuation stripped",
			query: "spear-phishing, explained!",
			want:  []string{"spear-phishing", "explained"},
		},
		{
			name:  "short tokens dropped",
			query: "a b c hashing",
			want:  []string{"hashing"},
		},
		{
			name:  "empty query",
			query: "  ?!  ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestPrimaryTopicSkipsInterrogatives(t *testing.T) {
	if got := PrimaryTopic([]string{"what", "is", "md5"}); got != "md5" {
		t.Errorf("topic = %q, want md5", got)
	}
	if got := PrimaryTopic([]string{"what", "is"}); got != "what" {
		t.Errorf("topic = %q, want what as last resort", got)
	}
	if got := PrimaryTopic(nil); got != "" {
		t.Errorf("topic = %q, want empty", got)
	}
}
