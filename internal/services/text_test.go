package services

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	cases := map[string]string{
		"  vegan  ":          "vegan",
		"no\tnuts\n\nplease": "no nuts please",
		"gluten\x00free":     "glutenfree",
		"Zoe\u0301":          "Zo\u00e9", // combining acute composes under NFC
		"":                   "",
		"   ":                "",
	}
	for in, want := range cases {
		if got := cleanText(in); got != want {
			t.Fatalf("cleanText(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestCleanText_Truncates(t *testing.T) {
	got := cleanText(strings.Repeat("é", 150))
	if n := len([]rune(got)); n != maxFieldRunes {
		t.Fatalf("expected %d runes, got %d", maxFieldRunes, n)
	}
}

func TestOptionalText(t *testing.T) {
	if optionalText("   ") != nil {
		t.Fatalf("blank input should be absent")
	}
	if p := optionalText(" Sam "); p == nil || *p != "Sam" {
		t.Fatalf("optionalText = %v", p)
	}
}
