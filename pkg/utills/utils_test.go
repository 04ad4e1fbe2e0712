package utils

import "testing"

func TestHasLetterHasNumber(t *testing.T) {
	cases := []struct {
		in        string
		letter    bool
		number    bool
	}{
		{"abc123", true, true},
		{"abcdef", true, false},
		{"123456", false, true},
		{"", false, false},
		{"!!??", false, false},
	}
	for _, c := range cases {
		if got := HasLetter(c.in); got != c.letter {
			t.Errorf("HasLetter(%q) = %v, want %v", c.in, got, c.letter)
		}
		if got := HasNumber(c.in); got != c.number {
			t.Errorf("HasNumber(%q) = %v, want %v", c.in, got, c.number)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("hello", 10); got != "hello" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := TruncateRunes("hello world", 5); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
	// multi-byte runes must not be split
	if got := TruncateRunes("héllo wörld", 7); got != "héllo w" {
		t.Errorf("expected 'héllo w', got %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("short text", 200); got != "short text" {
		t.Errorf("expected unchanged excerpt, got %q", got)
	}
	long := "this is a rather long piece of journal content that keeps going"
	got := Excerpt(long, 20)
	if got != "this is a rather lon..." {
		t.Errorf("unexpected excerpt: %q", got)
	}
}
