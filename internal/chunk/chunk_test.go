package chunk

import (
	"strings"
	"testing"
	"unicode/utf16"
	"unicode/utf8"
)

func TestSplitWithinLimitReturnsInput(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
	}{
		{name: "empty", text: "", limit: 10},
		{name: "exact", text: strings.Repeat("a", 10), limit: 10},
		{name: "keeps whitespace", text: "  a\n\n\n\n b  ", limit: 100},
		{name: "no limit", text: strings.Repeat("x", 5000), limit: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.limit)
			if len(got) != 1 || got[0] != tt.text {
				t.Fatalf("Split(%q) = %q, want single unchanged segment", tt.text, got)
			}
		})
	}
}

func TestSplitPacksParagraphs(t *testing.T) {
	paras := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		paras = append(paras, strings.Repeat(string(rune('a'+i)), 30))
	}
	text := strings.Join(paras, "\n\n")

	got := Split(text, 100)
	if len(got) < 2 {
		t.Fatalf("expected several segments, got %d", len(got))
	}
	for i, seg := range got {
		if n := utf8.RuneCountInString(seg); n > 100 {
			t.Fatalf("segment %d has %d runes, limit 100", i, n)
		}
	}
	if joined := strings.Join(got, "\n\n"); joined != text {
		t.Fatalf("rejoined text differs:\n%q\n%q", joined, text)
	}
}

func TestSplitDropsBlankParagraphs(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n   \n\n" + strings.Repeat("b", 60)
	got := Split(text, 70)
	want := []string{strings.Repeat("a", 60), strings.Repeat("b", 60)}
	if len(got) != len(want) {
		t.Fatalf("got %d segments, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitFallsBackToLines(t *testing.T) {
	lines := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		lines = append(lines, "• "+strings.Repeat("line", 5))
	}
	paragraph := strings.Join(lines, "\n")

	got := Split(paragraph, 70)
	for i, seg := range got {
		if n := utf8.RuneCountInString(seg); n > 70 {
			t.Fatalf("segment %d has %d runes, limit 70", i, n)
		}
	}
	if joined := strings.Join(got, "\n"); joined != paragraph {
		t.Fatalf("rejoined lines differ:\n%q\n%q", joined, paragraph)
	}
}

func TestSplitHardCutsLongLine(t *testing.T) {
	line := strings.Repeat("я", 250)
	got := Split(line, 100)
	if len(got) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(got))
	}
	if utf8.RuneCountInString(got[0]) != 100 || utf8.RuneCountInString(got[2]) != 50 {
		t.Fatalf("unexpected slice sizes: %d, %d", utf8.RuneCountInString(got[0]), utf8.RuneCountInString(got[2]))
	}
	if strings.Join(got, "") != line {
		t.Fatalf("hard cut lost content")
	}
}

func TestSplitEverySegmentWithinLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString(strings.Repeat("word ", i%37))
		if i%3 == 0 {
			b.WriteString("\n\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString(strings.Repeat("z", 9000))
	text := b.String()

	for _, limit := range []int{50, 128, SendLimit} {
		for i, seg := range Split(text, limit) {
			if n := utf8.RuneCountInString(seg); n > limit {
				t.Fatalf("limit %d: segment %d has %d runes", limit, i, n)
			}
			if strings.TrimSpace(seg) == "" {
				t.Fatalf("limit %d: segment %d is blank", limit, i)
			}
		}
	}
}

func TestSplitCountsUTF16Units(t *testing.T) {
	// Each emoji is one rune but two UTF-16 units.
	line := strings.Repeat("😀", 3000)
	got := Split(line, SendLimit)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	for i, seg := range got {
		if n := len(utf16.Encode([]rune(seg))); n > SendLimit {
			t.Fatalf("segment %d has %d UTF-16 units", i, n)
		}
	}
	if strings.Join(got, "") != line {
		t.Fatalf("split lost content")
	}

	mixed := strings.Repeat("a😀", 1400) + "\n\n" + strings.Repeat("b", 100)
	for i, seg := range Split(mixed, TelegramLimit) {
		if n := len(utf16.Encode([]rune(seg))); n > TelegramLimit {
			t.Fatalf("mixed segment %d has %d UTF-16 units", i, n)
		}
	}
}
