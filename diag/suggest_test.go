package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestSimilar(t *testing.T) {
	tests := []struct {
		target     string
		candidates []string
		want       []string
	}{
		{"lenght", []string{"length", "len", "height"}, []string{"height", "length", "len"}},
		{"retrun", []string{"return", "typeof", "let"}, []string{"return"}},
		{"fo", []string{"for", "if"}, []string{"for"}},
		{"Return", []string{"return"}, nil},
		{"", []string{"x"}, nil},
		{"x", nil, nil},
		{"abcdef", []string{"zzzzzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var got []string
			for _, s := range SuggestSimilar(tt.target, tt.candidates) {
				got = append(got, s.Value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestSimilarLimit(t *testing.T) {
	got := SuggestSimilar("data", []string{"date", "dates", "datum", "dada", "beta"})
	assert.Len(t, got, MaxSuggestions)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
}

func TestFormatSuggestions(t *testing.T) {
	assert.Equal(t, "", FormatSuggestions(nil))
	assert.Equal(t, "did you mean 'count'?", FormatSuggestions([]Suggestion{{Value: "count", Distance: 1}}))
	assert.Equal(t, "did you mean one of: 'a', 'b'?", FormatSuggestions([]Suggestion{{Value: "a"}, {Value: "b"}}))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"héllo", "hello", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%s/%s", tt.a, tt.b)
		assert.Equal(t, tt.want, levenshtein(tt.b, tt.a), "%s/%s", tt.b, tt.a)
	}
}
