package extract

import (
	"strings"
	"testing"
)

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  hello   world \n", "hello world"},
		{"\t a\r\nb \f c ", "a b c"},
		{"already clean", "already clean"},
	}
	for _, c := range cases {
		if got := CollapseWhitespace(c.in); got != c.want {
			t.Fatalf("CollapseWhitespace(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSummarize_ShortTextUnchanged(t *testing.T) {
	if got := Summarize("a short  text"); got != "a short text" {
		t.Fatalf("got %q", got)
	}
}

func TestSummarize_CapsAt200WithEllipsis(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := Summarize(long)
	if len(got) != 203 {
		t.Fatalf("summary length = %d, want 203", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got[len(got)-10:])
	}
}

func TestSummarize_ExactBoundaryHasNoEllipsis(t *testing.T) {
	exact := strings.Repeat("y", 200)
	if got := Summarize(exact); got != exact {
		t.Fatalf("expected unmodified text at the boundary, got length %d", len(got))
	}
}

func TestSummarize_CountsRunesNotBytes(t *testing.T) {
	long := strings.Repeat("ä", 250)
	got := Summarize(long)
	r := []rune(got)
	if len(r) != 203 {
		t.Fatalf("summary rune length = %d, want 203", len(r))
	}
	if string(r[:200]) != strings.Repeat("ä", 200) {
		t.Fatalf("summary truncated mid-sequence")
	}
}

func TestDomain(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://www.example.com/a/b", "example.com"},
		{"https://blog.example.org/post", "blog.example.org"},
		{"http://example.com:8080/x", "example.com"},
		{"not a url at all\x7f", ""},
	}
	for _, c := range cases {
		if got := Domain(c.in); got != c.want {
			t.Fatalf("Domain(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTitleFromPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://x.com/papers/attention_is-all_you-need.pdf", "attention is all you need"},
		{"https://x.com/report%20final.pdf", "report final"},
		{"https://x.com/", ""},
	}
	for _, c := range cases {
		if got := TitleFromPath(c.in); got != c.want {
			t.Fatalf("TitleFromPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
