package conversation

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-bot/internal/analyses"
	"resume-bot/internal/chunk"
)

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain text", want: "plain text"},
		{in: "v1.2 (beta)!", want: `v1\.2 \(beta\)\!`},
		{in: "a_b*c[d]~e`f>g#h+i-j=k|l{m}n", want: "a\\_b\\*c\\[d\\]\\~e\\`f\\>g\\#h\\+i\\-j\\=k\\|l\\{m\\}n"},
		{in: `C:\path`, want: `C:\\path`},
		{in: "Привет, мир", want: "Привет, мир"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeMarkdown(tt.in), tt.in)
	}
}

func TestReportSections(t *testing.T) {
	actions := make([]string, 14)
	for i := range actions {
		actions[i] = "шаг"
	}
	sections := reportSections(analyses.Detail{
		Score:     81,
		Strengths: []string{"Опыт 5+ лет"},
		Actions:   actions,
		OK:        true,
	})

	require.Len(t, sections, 3)
	assert.Equal(t, "*📊 Оценка резюме: 81/100*", sections[0])
	assert.Equal(t, headerStrength+"\n• Опыт 5\\+ лет", sections[1])
	assert.True(t, strings.HasPrefix(sections[2], headerActions))
	assert.Equal(t, 10, strings.Count(sections[2], "• "))
}

func TestRawSections(t *testing.T) {
	sections := rawSections(analyses.Failed("oops {json}", "p"))
	require.Len(t, sections, 2)
	assert.Equal(t, `oops \{json\}`, sections[1])
}

var markdownEscape = regexp.MustCompile(`\\(.)`)

func TestRawSectionsLongSingleLineKeepsEscapesWhole(t *testing.T) {
	raw := strings.Repeat("a.", 3000)
	sections := rawSections(analyses.Failed(raw, "p"))
	require.Greater(t, len(sections), 2)

	var restored strings.Builder
	for i, section := range sections[1:] {
		assert.LessOrEqual(t, len(section), chunk.SendLimit, "section %d", i)
		trailing := len(section) - len(strings.TrimRight(section, `\`))
		assert.Zero(t, trailing%2, "section %d ends with an unpaired backslash", i)
		assert.False(t, strings.HasPrefix(section, "."), "section %d starts with an unescaped dot", i)
		// Already within the limit, so sendLong passes it through as one message.
		assert.Equal(t, []string{section}, chunk.Split(section, chunk.SendLimit))
		restored.WriteString(markdownEscape.ReplaceAllString(section, "$1"))
	}
	assert.Equal(t, raw, restored.String())
}
